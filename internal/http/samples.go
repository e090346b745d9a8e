package httpapi

import (
	"net/http"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

type SampleHandler struct {
	db     *bun.DB
	logger *zap.Logger
}

func (h *SampleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.SampleFilter{
		Search:       q.Get("search"),
		IndividualID: queryInt64(r, "individual_id"),
		SampleType:   q.Get("type"),
		Limit:        queryInt(r, "limit", 100, 1, 1000),
	}
	samples, err := repositories.ListSamples(r.Context(), h.db, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

func (h *SampleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	sample, err := repositories.GetSample(r.Context(), h.db, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

func (h *SampleHandler) Create(w http.ResponseWriter, r *http.Request) {
	sample := new(models.Sample)
	if err := decodeBody(r, sample); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	if err := sample.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.InsertSample(r.Context(), h.db, sample); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("sample created", zap.String("sample_id", sample.SampleID))
	writeJSON(w, http.StatusCreated, sample)
}

func (h *SampleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	sample := new(models.Sample)
	if err := decodeBody(r, sample); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	sample.ID = id
	if err := sample.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.UpdateSample(r.Context(), h.db, sample); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

func (h *SampleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := repositories.DeleteSample(r.Context(), h.db, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *SampleHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := repositories.DistinctSampleTypes(r.Context(), h.db)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}
