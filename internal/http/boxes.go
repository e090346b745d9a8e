package httpapi

import (
	"net/http"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

type BoxHandler struct {
	db     *bun.DB
	logger *zap.Logger
}

func (h *BoxHandler) List(w http.ResponseWriter, r *http.Request) {
	boxes, err := repositories.ListBoxes(r.Context(), h.db)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boxes)
}

// Get returns a box with every tube in it, positions rendered for the
// grid view.
func (h *BoxHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	box, err := repositories.GetBox(r.Context(), h.db, id)
	if err != nil {
		writeError(w, err)
		return
	}

	tubes := make([]tubeView, 0, len(box.Tubes))
	for _, t := range box.Tubes {
		tubes = append(tubes, viewTube(t))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"box":   box,
		"tubes": tubes,
	})
}

func (h *BoxHandler) Create(w http.ResponseWriter, r *http.Request) {
	box := new(models.Box)
	if err := decodeBody(r, box); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	if box.BoxType == "" {
		box.BoxType = models.BoxStock
	}
	if err := box.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.InsertBox(r.Context(), h.db, box); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("box created", zap.String("name", box.Name))
	writeJSON(w, http.StatusCreated, box)
}

func (h *BoxHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	box := new(models.Box)
	if err := decodeBody(r, box); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	box.ID = id
	if box.BoxType == "" {
		box.BoxType = models.BoxStock
	}
	if err := box.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.UpdateBox(r.Context(), h.db, box); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, box)
}

func (h *BoxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := repositories.DeleteBox(r.Context(), h.db, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
