package httpapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

type MetaHandler struct {
	db *bun.DB
}

func (h *MetaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := repositories.GetStats(r.Context(), h.db)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *MetaHandler) Families(w http.ResponseWriter, r *http.Request) {
	families, err := repositories.DistinctFamilies(r.Context(), h.db)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, families)
}

// Projects returns every project tag in use. The projects column holds
// comma-separated tags, so distinct values are split and deduplicated.
func (h *MetaHandler) Projects(w http.ResponseWriter, r *http.Request) {
	var raw []string
	err := h.db.NewSelect().
		Model((*models.Individual)(nil)).
		ColumnExpr("DISTINCT i.projects").
		Where("i.projects IS NOT NULL AND i.projects != ''").
		Scan(r.Context(), &raw)
	if err != nil {
		writeError(w, err)
		return
	}

	seen := map[string]bool{}
	var projects []string
	for _, value := range raw {
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" && !seen[tag] {
				seen[tag] = true
				projects = append(projects, tag)
			}
		}
	}
	sort.Strings(projects)
	writeJSON(w, http.StatusOK, projects)
}
