//go:build integration

package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/database"
	"github.com/ghfc/dnastock/internal/grid"
	"github.com/ghfc/dnastock/internal/migrations"
	"github.com/ghfc/dnastock/internal/models"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.NewDB(dsn, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *bun.DB) (*models.Individual, *models.Sample, *models.Box, *models.Tube) {
	t.Helper()
	ctx := context.Background()

	ind := &models.Individual{IndividualID: "IND-0001"}
	if err := InsertIndividual(ctx, db, ind); err != nil {
		t.Fatalf("insert individual: %v", err)
	}

	sample := &models.Sample{SampleID: "c0733-01", IndividualID: &ind.ID}
	if err := InsertSample(ctx, db, sample); err != nil {
		t.Fatalf("insert sample: %v", err)
	}

	box := &models.Box{Name: "ADN 1", BoxType: models.BoxStock}
	if err := InsertBox(ctx, db, box); err != nil {
		t.Fatalf("insert box: %v", err)
	}

	row, col := 1, 1
	initial, current := 100.0, 100.0
	tube := &models.Tube{
		Barcode:       "T000001",
		SampleID:      &sample.ID,
		BoxID:         &box.ID,
		PositionRow:   &row,
		PositionCol:   &col,
		TubeType:      models.TubeStock,
		InitialVolume: &initial,
		CurrentVolume: &current,
	}
	if err := InsertTube(ctx, db, tube); err != nil {
		t.Fatalf("insert tube: %v", err)
	}

	return ind, sample, box, tube
}

func TestDuplicateBusinessKeys(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db)

	var dup *DuplicateKeyError

	err := InsertIndividual(ctx, db, &models.Individual{IndividualID: "IND-0001"})
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError for individual, got %v", err)
	}

	err = InsertTube(ctx, db, &models.Tube{Barcode: "T000001", TubeType: models.TubeStock})
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError for tube, got %v", err)
	}
}

func TestReferentialProtection(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ind, sample, box, tube := seed(t, db)

	var ref *ReferentialError
	if err := DeleteIndividual(ctx, db, ind.ID); !errors.As(err, &ref) {
		t.Fatalf("expected ReferentialError for individual, got %v", err)
	}
	if err := DeleteSample(ctx, db, sample.ID); !errors.As(err, &ref) {
		t.Fatalf("expected ReferentialError for sample, got %v", err)
	}
	if err := DeleteBox(ctx, db, box.ID); !errors.As(err, &ref) {
		t.Fatalf("expected ReferentialError for box, got %v", err)
	}

	// a tube with usage history is protected too
	taken := 10.0
	if err := RecordUsage(ctx, db, &models.Usage{TubeID: &tube.ID, VolumeTaken: &taken}); err != nil {
		t.Fatalf("record usage: %v", err)
	}
	if err := DeleteTube(ctx, db, tube.ID); !errors.As(err, &ref) {
		t.Fatalf("expected ReferentialError for tube, got %v", err)
	}
	got, err := GetTube(ctx, db, tube.ID)
	if err != nil {
		t.Fatalf("get tube after blocked delete: %v", err)
	}
	if len(got.Usages) != 1 {
		t.Fatalf("usage history lost on blocked delete: %d rows", len(got.Usages))
	}

	// delete bottom-up succeeds once there is no history
	fresh := &models.Tube{Barcode: "T000099", SampleID: &sample.ID, TubeType: models.TubeStock}
	if err := InsertTube(ctx, db, fresh); err != nil {
		t.Fatalf("insert tube: %v", err)
	}
	if err := DeleteTube(ctx, db, fresh.ID); err != nil {
		t.Fatalf("delete tube: %v", err)
	}

	// the first tube still exists, so its sample stays protected
	if err := DeleteSample(ctx, db, sample.ID); !errors.As(err, &ref) {
		t.Fatalf("expected ReferentialError for sample, got %v", err)
	}
}

func TestTubeStatusFilterPartitions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, sample, _, _ := seed(t, db)

	mk := func(barcode string, initial, current *float64) {
		t.Helper()
		tube := &models.Tube{Barcode: barcode, SampleID: &sample.ID, TubeType: models.TubeStock, InitialVolume: initial, CurrentVolume: current}
		if err := InsertTube(ctx, db, tube); err != nil {
			t.Fatalf("insert %s: %v", barcode, err)
		}
	}
	f := func(v float64) *float64 { return &v }

	mk("T000010", nil, nil)           // empty
	mk("T000011", f(100), f(0))      // empty
	mk("T000012", f(100), f(5))      // critical
	mk("T000013", f(100), f(20))     // low
	mk("T000014", f(100), f(80))     // available
	mk("T000015", nil, f(15))        // available, no initial

	total, err := CountTubes(ctx, db, TubeFilter{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	sum := 0
	for _, status := range []models.TubeStatus{models.StatusEmpty, models.StatusCritical, models.StatusLow, models.StatusAvailable} {
		n, err := CountTubes(ctx, db, TubeFilter{Status: status})
		if err != nil {
			t.Fatalf("count %s: %v", status, err)
		}
		sum += n
	}
	if sum != total {
		t.Fatalf("status buckets must partition: sum=%d total=%d", sum, total)
	}

	empties, err := ListTubes(ctx, db, TubeFilter{Status: models.StatusEmpty})
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(empties) != 2 {
		t.Fatalf("expected 2 empty tubes, got %d", len(empties))
	}
}

func TestRecordUsageDecrements(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, _, _, tube := seed(t, db)

	taken := 30.0
	user := "avaksman"
	usage := &models.Usage{TubeID: &tube.ID, UserName: &user, VolumeTaken: &taken}
	if err := RecordUsage(ctx, db, usage); err != nil {
		t.Fatalf("record usage: %v", err)
	}

	got, err := GetTube(ctx, db, tube.ID)
	if err != nil {
		t.Fatalf("get tube: %v", err)
	}
	if got.CurrentVolume == nil || *got.CurrentVolume != 70 {
		t.Fatalf("current volume = %v, want 70", got.CurrentVolume)
	}
	if len(got.Usages) != 1 {
		t.Fatalf("expected 1 usage, got %d", len(got.Usages))
	}
}

func TestRecordUsageInsufficientRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, _, _, tube := seed(t, db)

	taken := 500.0
	usage := &models.Usage{TubeID: &tube.ID, VolumeTaken: &taken}
	if err := RecordUsage(ctx, db, usage); err == nil {
		t.Fatalf("expected insufficient volume error")
	}

	got, err := GetTube(ctx, db, tube.ID)
	if err != nil {
		t.Fatalf("get tube: %v", err)
	}
	if *got.CurrentVolume != 100 {
		t.Fatalf("volume changed despite failed usage: %v", *got.CurrentVolume)
	}
	if len(got.Usages) != 0 {
		t.Fatalf("usage row leaked: %d", len(got.Usages))
	}
}

func TestOccupiedPositions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, _, box, tube := seed(t, db)

	occupied, err := OccupiedPositions(ctx, db, box.ID)
	if err != nil {
		t.Fatalf("occupied: %v", err)
	}
	if occupied[grid.Coord{Row: 1, Col: 1}] != tube.Barcode {
		t.Fatalf("expected A1 occupied by %s, got %+v", tube.Barcode, occupied)
	}
	if err := grid.ValidatePlacement(grid.Coord{Row: 1, Col: 1}, occupied); err == nil {
		t.Fatalf("expected conflict for A1")
	}
}

func TestBoxesByNameAmbiguity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := &models.Box{Name: "ADN 7", BoxType: models.BoxStock}
	second := &models.Box{Name: "ADN 7", BoxType: models.BoxWorking}
	if err := InsertBox(ctx, db, first); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := InsertBox(ctx, db, second); err != nil {
		t.Fatalf("insert: %v", err)
	}

	byName, ambiguous, err := BoxesByName(ctx, db)
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if byName["ADN 7"].ID != first.ID {
		t.Fatalf("expected lowest ID to win, got %d", byName["ADN 7"].ID)
	}
	if !ambiguous["ADN 7"] {
		t.Fatalf("expected ADN 7 flagged ambiguous")
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db)

	stats, err := GetStats(ctx, db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Individuals != 1 || stats.Samples != 1 || stats.Tubes != 1 || stats.Boxes != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
