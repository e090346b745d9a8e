package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
)

// SampleFilter narrows ListSamples results.
type SampleFilter struct {
	Search       string
	IndividualID int64
	SampleType   string
	Limit        int
	Offset       int
}

// ListSamples returns samples matching the filter, newest first, with
// their individual loaded.
func ListSamples(ctx context.Context, db bun.IDB, f SampleFilter) ([]*models.Sample, error) {
	var samples []*models.Sample
	q := db.NewSelect().
		Model(&samples).
		Relation("Individual")
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("sp.sample_id LIKE ?", pattern).
				WhereOr("sp.notes LIKE ?", pattern)
		})
	}
	if f.IndividualID > 0 {
		q = q.Where("sp.individual_id = ?", f.IndividualID)
	}
	if f.SampleType != "" {
		q = q.Where("sp.sample_type = ?", f.SampleType)
	}
	q = q.Order("sp.created_at DESC", "sp.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	err := q.Scan(ctx)
	return samples, err
}

// GetSample fetches a sample with its individual and tubes.
func GetSample(ctx context.Context, db bun.IDB, id int64) (*models.Sample, error) {
	sample := new(models.Sample)
	err := db.NewSelect().
		Model(sample).
		Where("sp.id = ?", id).
		Relation("Individual").
		Relation("Tubes").
		Relation("Tubes.Box").
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return sample, nil
}

// GetSampleByCode fetches a sample by its business identifier.
func GetSampleByCode(ctx context.Context, db bun.IDB, code string) (*models.Sample, error) {
	sample := new(models.Sample)
	err := db.NewSelect().
		Model(sample).
		Where("sp.sample_id = ?", code).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return sample, nil
}

// InsertSample stores a new sample.
func InsertSample(ctx context.Context, db bun.IDB, sample *models.Sample) error {
	if err := sample.Validate(); err != nil {
		return err
	}
	_, err := db.NewInsert().Model(sample).Exec(ctx)
	return wrapDuplicate(err, "sample ID", sample.SampleID)
}

// UpdateSample rewrites the mutable columns of a sample.
func UpdateSample(ctx context.Context, db bun.IDB, sample *models.Sample) error {
	if err := sample.Validate(); err != nil {
		return err
	}
	res, err := db.NewUpdate().
		Model(sample).
		Column("sample_id", "individual_id", "sample_type", "arrival_date", "notes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapDuplicate(err, "sample ID", sample.SampleID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSample removes a sample. Samples with tubes still attached are
// protected.
func DeleteSample(ctx context.Context, db bun.IDB, id int64) error {
	count, err := db.NewSelect().
		Model((*models.Tube)(nil)).
		Where("t.sample_id = ?", id).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialError{Entity: "sample", ID: id, Children: "tubes", Count: count}
	}

	res, err := db.NewDelete().
		Model((*models.Sample)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DistinctSampleTypes lists the sample types in use.
func DistinctSampleTypes(ctx context.Context, db bun.IDB) ([]string, error) {
	var types []string
	err := db.NewSelect().
		Model((*models.Sample)(nil)).
		ColumnExpr("DISTINCT sp.sample_type").
		Where("sp.sample_type IS NOT NULL AND sp.sample_type != ''").
		Order("sample_type ASC").
		Scan(ctx, &types)
	return types, err
}
