package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ghfc/dnastock/internal/grid"
	"github.com/ghfc/dnastock/internal/repositories"
	"github.com/ghfc/dnastock/internal/volume"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorBody{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: message})
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	var dup *repositories.DuplicateKeyError
	var ref *repositories.ReferentialError
	var conflict *grid.PositionConflictError
	var insufficient *volume.InsufficientVolumeError
	var invalid *volume.InvalidAmountError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &dup), errors.As(err, &ref), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &insufficient), errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func queryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

func queryInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return n
}
