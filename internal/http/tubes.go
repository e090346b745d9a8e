package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/export"
	"github.com/ghfc/dnastock/internal/grid"
	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

type TubeHandler struct {
	db     *bun.DB
	logger *zap.Logger

	// exportLimit caps how many tubes one export pulls.
	exportLimit int
}

type tubeView struct {
	*models.Tube
	Status          models.TubeStatus `json:"status"`
	PositionDisplay string            `json:"position_display"`
}

func viewTube(t *models.Tube) tubeView {
	return tubeView{Tube: t, Status: t.Status(), PositionDisplay: t.PositionDisplay()}
}

func tubeFilterFromQuery(r *http.Request) (repositories.TubeFilter, error) {
	q := r.URL.Query()
	status, ok := models.ParseTubeStatus(q.Get("status"))
	if !ok {
		return repositories.TubeFilter{}, fmt.Errorf("unknown status %q", q.Get("status"))
	}
	return repositories.TubeFilter{
		Search:   q.Get("search"),
		BoxID:    queryInt64(r, "box"),
		SampleID: queryInt64(r, "sample_id"),
		Status:   status,
		TubeType: models.TubeType(q.Get("type")),
	}, nil
}

func (h *TubeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := tubeFilterFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	filter.Limit = queryInt(r, "limit", 500, 1, 5000)

	tubes, err := repositories.ListTubes(r.Context(), h.db, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]tubeView, 0, len(tubes))
	for _, t := range tubes {
		views = append(views, viewTube(t))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetByBarcode resolves a scanned barcode to its tube.
func (h *TubeHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("barcode")
	if barcode == "" {
		badRequest(w, "barcode is required")
		return
	}
	tube, err := repositories.GetTubeByBarcode(r.Context(), h.db, barcode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTube(tube))
}

func (h *TubeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	tube, err := repositories.GetTube(r.Context(), h.db, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTube(tube))
}

// checkPlacement rejects a create or update that would drop a tube into
// an occupied well, unless the caller passed override=1.
func (h *TubeHandler) checkPlacement(r *http.Request, tube *models.Tube, excludeID int64) error {
	if tube.BoxID == nil || !tube.HasPosition() {
		return nil
	}
	if r.URL.Query().Get("override") == "1" {
		return nil
	}
	occupied, err := repositories.OccupiedPositions(r.Context(), h.db, *tube.BoxID)
	if err != nil {
		return err
	}
	if excludeID > 0 {
		coord, _ := tube.Coord()
		if occupied[coord] == tube.Barcode {
			return nil
		}
	}
	coord, _ := tube.Coord()
	return grid.ValidatePlacement(coord, occupied)
}

func (h *TubeHandler) Create(w http.ResponseWriter, r *http.Request) {
	tube := new(models.Tube)
	if err := decodeBody(r, tube); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	if tube.TubeType == "" {
		tube.TubeType = models.TubeStock
	}
	if err := tube.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.checkPlacement(r, tube, 0); err != nil {
		writeError(w, err)
		return
	}
	if err := repositories.InsertTube(r.Context(), h.db, tube); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("tube created", zap.String("barcode", tube.Barcode))
	writeJSON(w, http.StatusCreated, viewTube(tube))
}

func (h *TubeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	tube := new(models.Tube)
	if err := decodeBody(r, tube); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	tube.ID = id
	if tube.TubeType == "" {
		tube.TubeType = models.TubeStock
	}
	if err := tube.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.checkPlacement(r, tube, id); err != nil {
		writeError(w, err)
		return
	}
	if err := repositories.UpdateTube(r.Context(), h.db, tube); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTube(tube))
}

func (h *TubeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := repositories.DeleteTube(r.Context(), h.db, id); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("tube deleted", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Export streams the filtered tubes as a TSV or XLSX attachment.
func (h *TubeHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "tsv"
	}
	if format != "tsv" && format != "xlsx" {
		badRequest(w, "format must be tsv or xlsx")
		return
	}

	filter, err := tubeFilterFromQuery(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	filter.Limit = h.exportLimit

	tubes, err := repositories.ListTubes(r.Context(), h.db, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	rows := make([]export.TubeRow, 0, len(tubes))
	for _, t := range tubes {
		rows = append(rows, export.FromTube(t))
	}

	filename := export.Filename(format, time.Now())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "tsv" {
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		if err := export.WriteTSV(w, rows); err != nil {
			h.logger.Error("tsv export failed", zap.Error(err))
		}
		return
	}

	data, err := export.BuildXLSX(rows)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	_, _ = w.Write(data)
}
