package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/ghfc/dnastock/internal/grid"
	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
	"github.com/ghfc/dnastock/internal/volume"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{repositories.ErrNotFound, http.StatusNotFound},
		{&repositories.DuplicateKeyError{Field: "barcode", Value: "T1"}, http.StatusConflict},
		{&repositories.ReferentialError{Entity: "box", ID: 1, Children: "tubes", Count: 3}, http.StatusConflict},
		{&grid.PositionConflictError{Coord: grid.Coord{Row: 1, Col: 1}, Barcode: "T1"}, http.StatusConflict},
		{&volume.InsufficientVolumeError{Available: 10, Requested: 15}, http.StatusBadRequest},
		{&volume.InvalidAmountError{Requested: -1}, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := errorStatus(c.err); got != c.want {
			t.Fatalf("errorStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

// Status filter values arrive in whatever casing callers use; every
// casing must land on the right bucket and unknown values must be
// rejected instead of silently dropped.
func TestTubeFilterStatusCasing(t *testing.T) {
	cases := []struct {
		query string
		want  models.TubeStatus
	}{
		{"Empty", models.StatusEmpty},
		{"CRITICAL", models.StatusCritical},
		{"low", models.StatusLow},
		{"Available", models.StatusAvailable},
		{"", ""},
	}
	for _, c := range cases {
		req, _ := http.NewRequest(http.MethodGet, "/api/tubes?status="+c.query, nil)
		filter, err := tubeFilterFromQuery(req)
		if err != nil {
			t.Fatalf("status %q: %v", c.query, err)
		}
		if filter.Status != c.want {
			t.Fatalf("status %q parsed as %q, want %q", c.query, filter.Status, c.want)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/tubes?status=bogus", nil)
	if _, err := tubeFilterFromQuery(req); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestQueryIntBounds(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/api/individuals?page=0&per_page=9999&bad=x", nil)

	if got := queryInt(req, "page", 1, 1, 0); got != 1 {
		t.Fatalf("page = %d, want clamped to 1", got)
	}
	if got := queryInt(req, "per_page", 25, 1, 100); got != 100 {
		t.Fatalf("per_page = %d, want clamped to 100", got)
	}
	if got := queryInt(req, "bad", 7, 1, 0); got != 7 {
		t.Fatalf("bad = %d, want default 7", got)
	}
	if got := queryInt(req, "missing", 25, 1, 100); got != 25 {
		t.Fatalf("missing = %d, want default 25", got)
	}
}
