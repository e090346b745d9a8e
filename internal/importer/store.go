package importer

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/repositories"
)

// DBStore persists reconciled records through the repositories layer.
// Tube batches go in as one transaction each.
type DBStore struct {
	db *bun.DB
}

// NewDBStore wraps a database handle.
func NewDBStore(db *bun.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) InsertBox(ctx context.Context, box *models.Box) error {
	return repositories.InsertBox(ctx, s.db, box)
}

func (s *DBStore) InsertSample(ctx context.Context, sample *models.Sample) error {
	return repositories.InsertSample(ctx, s.db, sample)
}

func (s *DBStore) InsertTubes(ctx context.Context, tubes []*models.Tube) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return repositories.InsertTubes(ctx, tx, tubes)
	})
}

// LoadLookups snapshots the reconciliation state from the database.
func LoadLookups(ctx context.Context, db *bun.DB) (*Lookups, error) {
	lk := NewLookups()

	individuals, err := repositories.ListIndividuals(ctx, db, repositories.IndividualFilter{})
	if err != nil {
		return nil, err
	}
	for _, ind := range individuals {
		lk.Individuals[ind.IndividualID] = ind.ID
	}

	samples, err := repositories.ListSamples(ctx, db, repositories.SampleFilter{})
	if err != nil {
		return nil, err
	}
	// ListSamples returns newest first; walk backwards so the oldest
	// sample of an individual wins, like the first-sample rule expects.
	for i := len(samples) - 1; i >= 0; i-- {
		sp := samples[i]
		if sp.IndividualID != nil {
			if _, ok := lk.SampleByIndividual[*sp.IndividualID]; !ok {
				lk.SampleByIndividual[*sp.IndividualID] = sp.ID
			}
		}
		if _, ok := lk.SampleByCode[sp.SampleID]; !ok {
			lk.SampleByCode[sp.SampleID] = sp.ID
		}
	}

	byName, ambiguous, err := repositories.BoxesByName(ctx, db)
	if err != nil {
		return nil, err
	}
	for name, box := range byName {
		lk.BoxesByName[name] = box.ID
	}
	lk.AmbiguousBoxNames = ambiguous

	lk.SeenBarcodes, err = repositories.SeenBarcodes(ctx, db)
	if err != nil {
		return nil, err
	}

	return lk, nil
}
