package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
)

// Stats is the dashboard summary.
type Stats struct {
	Individuals   int `json:"individuals"`
	Samples       int `json:"samples"`
	Tubes         int `json:"tubes"`
	Boxes         int `json:"boxes"`
	EmptyTubes    int `json:"empty_tubes"`
	CriticalTubes int `json:"critical_tubes"`
	LowTubes      int `json:"low_tubes"`
	UnlinkedTubes int `json:"unlinked_tubes"`
}

// GetStats collects the dashboard counters.
func GetStats(ctx context.Context, db bun.IDB) (*Stats, error) {
	stats := new(Stats)
	var err error

	if stats.Individuals, err = db.NewSelect().Model((*models.Individual)(nil)).Count(ctx); err != nil {
		return nil, err
	}
	if stats.Samples, err = db.NewSelect().Model((*models.Sample)(nil)).Count(ctx); err != nil {
		return nil, err
	}
	if stats.Tubes, err = db.NewSelect().Model((*models.Tube)(nil)).Count(ctx); err != nil {
		return nil, err
	}
	if stats.Boxes, err = db.NewSelect().Model((*models.Box)(nil)).Count(ctx); err != nil {
		return nil, err
	}

	if stats.EmptyTubes, err = CountTubes(ctx, db, TubeFilter{Status: models.StatusEmpty}); err != nil {
		return nil, err
	}
	if stats.CriticalTubes, err = CountTubes(ctx, db, TubeFilter{Status: models.StatusCritical}); err != nil {
		return nil, err
	}
	if stats.LowTubes, err = CountTubes(ctx, db, TubeFilter{Status: models.StatusLow}); err != nil {
		return nil, err
	}

	if stats.UnlinkedTubes, err = db.NewSelect().
		Model((*models.Tube)(nil)).
		Join("LEFT JOIN samples AS sp ON sp.id = t.sample_id").
		Where("t.sample_id IS NULL OR sp.individual_id IS NULL").
		Count(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}
