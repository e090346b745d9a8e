package httpapi

import (
	"net/http"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

type IndividualHandler struct {
	db     *bun.DB
	logger *zap.Logger
}

type individualPage struct {
	Individuals []individualView `json:"individuals"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	PerPage     int              `json:"per_page"`
	Pages       int              `json:"pages"`
}

type individualView struct {
	*models.Individual
	SexDisplay  string `json:"sex_display"`
	SampleCount int    `json:"sample_count"`
	TubeCount   int    `json:"tube_count"`
}

// List returns a page of individuals with sample and tube counts.
func (h *IndividualHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page", 1, 1, 0)
	perPage := queryInt(r, "per_page", 25, 1, 100)

	filter := repositories.IndividualFilter{
		Search:  q.Get("search"),
		Family:  q.Get("family"),
		Project: q.Get("project"),
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	}

	ctx := r.Context()
	total, err := repositories.CountIndividuals(ctx, h.db, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	individuals, err := repositories.ListIndividuals(ctx, h.db, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	ids := make([]int64, 0, len(individuals))
	for _, ind := range individuals {
		ids = append(ids, ind.ID)
	}
	sampleCounts, err := repositories.SampleCounts(ctx, h.db, ids)
	if err != nil {
		writeError(w, err)
		return
	}
	tubeCounts, err := repositories.TubeCounts(ctx, h.db, ids)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]individualView, 0, len(individuals))
	for _, ind := range individuals {
		views = append(views, individualView{
			Individual:  ind,
			SexDisplay:  ind.SexDisplay(),
			SampleCount: sampleCounts[ind.ID],
			TubeCount:   tubeCounts[ind.ID],
		})
	}

	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	writeJSON(w, http.StatusOK, individualPage{
		Individuals: views,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		Pages:       pages,
	})
}

// Get returns one individual with its samples and their tubes.
func (h *IndividualHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	individual, err := repositories.GetIndividual(r.Context(), h.db, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, individualView{Individual: individual, SexDisplay: individual.SexDisplay()})
}

func (h *IndividualHandler) Create(w http.ResponseWriter, r *http.Request) {
	individual := new(models.Individual)
	if err := decodeBody(r, individual); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	if err := individual.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.InsertIndividual(r.Context(), h.db, individual); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("individual created", zap.String("individual_id", individual.IndividualID))
	writeJSON(w, http.StatusCreated, individual)
}

func (h *IndividualHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	individual := new(models.Individual)
	if err := decodeBody(r, individual); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	individual.ID = id
	if err := individual.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.UpdateIndividual(r.Context(), h.db, individual); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, individual)
}

func (h *IndividualHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := repositories.DeleteIndividual(r.Context(), h.db, id); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("individual deleted", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// AddSample creates a sample directly under an individual.
func (h *IndividualHandler) AddSample(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if _, err := repositories.GetIndividual(r.Context(), h.db, id); err != nil {
		writeError(w, err)
		return
	}

	sample := new(models.Sample)
	if err := decodeBody(r, sample); err != nil {
		badRequest(w, "invalid body: "+err.Error())
		return
	}
	sample.IndividualID = &id
	if err := sample.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := repositories.InsertSample(r.Context(), h.db, sample); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sample)
}
