package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

type UsageHandler struct {
	db     *bun.DB
	logger *zap.Logger
}

func (h *UsageHandler) List(w http.ResponseWriter, r *http.Request) {
	tubeID := queryInt64(r, "tube_id")
	if tubeID <= 0 {
		badRequest(w, "tube_id is required")
		return
	}
	usages, err := repositories.ListUsages(r.Context(), h.db, tubeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usages)
}

// Create checks material out of a tube. The volume decrement and the
// history row land together or not at all.
func (h *UsageHandler) Create(w http.ResponseWriter, r *http.Request) {
	usage := new(models.Usage)
	if err := decodeBody(r, usage); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	if usage.DateOut == nil {
		now := time.Now()
		usage.DateOut = &now
	}
	if err := usage.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.RecordUsage(r.Context(), h.db, usage); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("usage recorded",
		zap.Int64("tube_id", *usage.TubeID),
		zap.Float64p("volume_taken", usage.VolumeTaken))
	writeJSON(w, http.StatusCreated, usage)
}

// Return marks a checkout as returned. An empty body defaults the return
// date to now.
func (h *UsageHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var body struct {
		DateReturn *time.Time `json:"date_return"`
		Notes      *string    `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil && err != io.EOF {
		badRequest(w, "invalid body: "+err.Error())
		return
	}

	usage, err := repositories.GetUsage(r.Context(), h.db, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if body.DateReturn != nil {
		usage.DateReturn = body.DateReturn
	} else if usage.DateReturn == nil {
		now := time.Now()
		usage.DateReturn = &now
	}
	if body.Notes != nil {
		usage.Notes = body.Notes
	}
	if err := repositories.ReturnUsage(r.Context(), h.db, usage); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
