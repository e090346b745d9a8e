package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
)

// IndividualFilter narrows ListIndividuals results.
type IndividualFilter struct {
	Search  string
	Family  string
	Project string
	Limit   int
	Offset  int
}

func applyIndividualFilter(q *bun.SelectQuery, f IndividualFilter) *bun.SelectQuery {
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("i.individual_id LIKE ?", pattern).
				WhereOr("i.aliases LIKE ?", pattern).
				WhereOr("i.family_id LIKE ?", pattern).
				WhereOr("i.projects LIKE ?", pattern)
		})
	}
	if f.Family != "" {
		q = q.Where("i.family_id = ?", f.Family)
	}
	if f.Project != "" {
		q = q.Where("i.projects LIKE ?", "%"+f.Project+"%")
	}
	return q
}

// ListIndividuals returns individuals matching the filter, ordered by
// their business identifier.
func ListIndividuals(ctx context.Context, db bun.IDB, f IndividualFilter) ([]*models.Individual, error) {
	var individuals []*models.Individual
	q := applyIndividualFilter(db.NewSelect().Model(&individuals), f).
		Order("i.individual_id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	err := q.Scan(ctx)
	return individuals, err
}

// CountIndividuals returns the total matching the filter, for pagination.
func CountIndividuals(ctx context.Context, db bun.IDB, f IndividualFilter) (int, error) {
	return applyIndividualFilter(db.NewSelect().Model((*models.Individual)(nil)), f).Count(ctx)
}

// GetIndividual fetches an individual by primary key with its samples and
// their tubes.
func GetIndividual(ctx context.Context, db bun.IDB, id int64) (*models.Individual, error) {
	individual := new(models.Individual)
	err := db.NewSelect().
		Model(individual).
		Where("i.id = ?", id).
		Relation("Samples").
		Relation("Samples.Tubes").
		Relation("Samples.Tubes.Box").
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return individual, nil
}

// GetIndividualByCode fetches an individual by its business identifier.
func GetIndividualByCode(ctx context.Context, db bun.IDB, code string) (*models.Individual, error) {
	individual := new(models.Individual)
	err := db.NewSelect().
		Model(individual).
		Where("i.individual_id = ?", code).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return individual, nil
}

// InsertIndividual stores a new individual.
func InsertIndividual(ctx context.Context, db bun.IDB, individual *models.Individual) error {
	if err := individual.Validate(); err != nil {
		return err
	}
	_, err := db.NewInsert().Model(individual).Exec(ctx)
	return wrapDuplicate(err, "individual ID", individual.IndividualID)
}

// UpdateIndividual rewrites the mutable columns of an individual.
func UpdateIndividual(ctx context.Context, db bun.IDB, individual *models.Individual) error {
	if err := individual.Validate(); err != nil {
		return err
	}
	res, err := db.NewUpdate().
		Model(individual).
		Column("individual_id", "aliases", "family_id", "sex", "phenotype",
			"projects", "other_family_codes", "notes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapDuplicate(err, "individual ID", individual.IndividualID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIndividual removes an individual. Individuals with samples still
// attached are protected.
func DeleteIndividual(ctx context.Context, db bun.IDB, id int64) error {
	count, err := db.NewSelect().
		Model((*models.Sample)(nil)).
		Where("sp.individual_id = ?", id).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialError{Entity: "individual", ID: id, Children: "samples", Count: count}
	}

	res, err := db.NewDelete().
		Model((*models.Individual)(nil)).
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

// SampleCounts returns the number of samples per individual for the given
// IDs in one query.
func SampleCounts(ctx context.Context, db bun.IDB, ids []int64) (map[int64]int, error) {
	if len(ids) == 0 {
		return map[int64]int{}, nil
	}
	var rows []struct {
		IndividualID int64 `bun:"individual_id"`
		N            int   `bun:"n"`
	}
	err := db.NewSelect().
		Model((*models.Sample)(nil)).
		ColumnExpr("sp.individual_id AS individual_id").
		ColumnExpr("COUNT(*) AS n").
		Where("sp.individual_id IN (?)", bun.In(ids)).
		Group("sp.individual_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.IndividualID] = r.N
	}
	return counts, nil
}

// TubeCounts returns the number of tubes per individual for the given IDs.
func TubeCounts(ctx context.Context, db bun.IDB, ids []int64) (map[int64]int, error) {
	if len(ids) == 0 {
		return map[int64]int{}, nil
	}
	var rows []struct {
		IndividualID int64 `bun:"individual_id"`
		N            int   `bun:"n"`
	}
	err := db.NewSelect().
		Model((*models.Tube)(nil)).
		ColumnExpr("sp.individual_id AS individual_id").
		ColumnExpr("COUNT(*) AS n").
		Join("JOIN samples AS sp ON sp.id = t.sample_id").
		Where("sp.individual_id IN (?)", bun.In(ids)).
		Group("sp.individual_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.IndividualID] = r.N
	}
	return counts, nil
}

// DistinctFamilies lists the family codes in use, for filter dropdowns.
func DistinctFamilies(ctx context.Context, db bun.IDB) ([]string, error) {
	var families []string
	err := db.NewSelect().
		Model((*models.Individual)(nil)).
		ColumnExpr("DISTINCT i.family_id").
		Where("i.family_id IS NOT NULL AND i.family_id != ''").
		Order("family_id ASC").
		Scan(ctx, &families)
	return families, err
}
