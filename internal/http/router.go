// Package httpapi exposes the inventory over a JSON API, using the
// standard library mux to avoid a routing dependency.
package httpapi

import (
	"net/http"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/ratelimit"
)

type Router struct {
	mux     *http.ServeMux
	logger  *zap.Logger
	limiter ratelimit.Limiter
}

// NewRouter wires every API route onto a fresh mux. The limiter guards
// the bulk export endpoint, exportLimit caps its row count.
func NewRouter(db *bun.DB, logger *zap.Logger, limiter ratelimit.Limiter, exportLimit int) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		logger:  logger,
		limiter: limiter,
	}
	if exportLimit <= 0 {
		exportLimit = 50000
	}

	individuals := &IndividualHandler{db: db, logger: logger}
	samples := &SampleHandler{db: db, logger: logger}
	tubes := &TubeHandler{db: db, logger: logger, exportLimit: exportLimit}
	boxes := &BoxHandler{db: db, logger: logger}
	usages := &UsageHandler{db: db, logger: logger}
	meta := &MetaHandler{db: db}

	r.handle("GET /api/individuals", individuals.List)
	r.handle("GET /api/individuals/{id}", individuals.Get)
	r.handle("POST /api/individuals", individuals.Create)
	r.handle("PUT /api/individuals/{id}", individuals.Update)
	r.handle("DELETE /api/individuals/{id}", individuals.Delete)
	r.handle("POST /api/individuals/{id}/samples", individuals.AddSample)

	// Legacy French aliases kept so existing lab tooling and bookmarks
	// keep working.
	r.handle("GET /api/sujets", individuals.List)
	r.handle("GET /api/sujets/{id}", individuals.Get)
	r.handle("POST /api/sujets", individuals.Create)
	r.handle("PUT /api/sujets/{id}", individuals.Update)
	r.handle("DELETE /api/sujets/{id}", individuals.Delete)
	r.handle("POST /api/sujets/{id}/samples", individuals.AddSample)

	r.handle("GET /api/samples", samples.List)
	r.handle("GET /api/samples/types", samples.Types)
	r.handle("GET /api/samples/{id}", samples.Get)
	r.handle("POST /api/samples", samples.Create)
	r.handle("PUT /api/samples/{id}", samples.Update)
	r.handle("DELETE /api/samples/{id}", samples.Delete)

	r.handle("GET /api/tubes", tubes.List)
	r.handle("GET /api/tubes/export", r.rateLimited(tubes.Export))
	r.handle("GET /api/tubes/barcode/{barcode}", tubes.GetByBarcode)
	r.handle("GET /api/tubes/{id}", tubes.Get)
	r.handle("POST /api/tubes", tubes.Create)
	r.handle("PUT /api/tubes/{id}", tubes.Update)
	r.handle("DELETE /api/tubes/{id}", tubes.Delete)

	r.handle("GET /api/boxes", boxes.List)
	r.handle("GET /api/boxes/{id}", boxes.Get)
	r.handle("POST /api/boxes", boxes.Create)
	r.handle("PUT /api/boxes/{id}", boxes.Update)
	r.handle("DELETE /api/boxes/{id}", boxes.Delete)

	r.handle("GET /api/usages", usages.List)
	r.handle("POST /api/usages", usages.Create)
	r.handle("PUT /api/usages/{id}/return", usages.Return)

	r.handle("GET /api/stats", meta.Stats)
	r.handle("GET /api/families", meta.Families)
	r.handle("GET /api/projects", meta.Projects)

	return r
}

func (r *Router) handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, r.logged(pattern, h))
}

func (r *Router) logged(pattern string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		h(w, req)
		r.logger.Debug("request",
			zap.String("route", pattern),
			zap.String("path", req.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (r *Router) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if r.limiter != nil && !r.limiter.Allow() {
			retry := r.limiter.Reserve()
			w.Header().Set("Retry-After", retry.Round(time.Second).String())
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many export requests"})
			return
		}
		h(w, req)
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
