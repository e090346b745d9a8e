package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
)

// BoxSummary is a box row with its tube occupancy.
type BoxSummary struct {
	Box       *models.Box `json:"box"`
	TubeCount int         `json:"tube_count"`
}

// ListBoxes returns every box with its tube count, ordered by name.
func ListBoxes(ctx context.Context, db bun.IDB) ([]*BoxSummary, error) {
	var boxes []*models.Box
	err := db.NewSelect().
		Model(&boxes).
		Order("b.name ASC", "b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		BoxID int64 `bun:"box_id"`
		N     int   `bun:"n"`
	}
	err = db.NewSelect().
		Model((*models.Tube)(nil)).
		ColumnExpr("t.box_id AS box_id").
		ColumnExpr("COUNT(*) AS n").
		Where("t.box_id IS NOT NULL").
		Group("t.box_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.BoxID] = r.N
	}

	summaries := make([]*BoxSummary, 0, len(boxes))
	for _, b := range boxes {
		summaries = append(summaries, &BoxSummary{Box: b, TubeCount: counts[b.ID]})
	}
	return summaries, nil
}

// GetBox fetches a box with its tubes and their samples.
func GetBox(ctx context.Context, db bun.IDB, id int64) (*models.Box, error) {
	box := new(models.Box)
	err := db.NewSelect().
		Model(box).
		Where("b.id = ?", id).
		Relation("Tubes").
		Relation("Tubes.Sample").
		Relation("Tubes.Sample.Individual").
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return box, nil
}

// InsertBox stores a new box.
func InsertBox(ctx context.Context, db bun.IDB, box *models.Box) error {
	if err := box.Validate(); err != nil {
		return err
	}
	_, err := db.NewInsert().Model(box).Exec(ctx)
	return err
}

// UpdateBox rewrites the mutable columns of a box.
func UpdateBox(ctx context.Context, db bun.IDB, box *models.Box) error {
	if err := box.Validate(); err != nil {
		return err
	}
	res, err := db.NewUpdate().
		Model(box).
		Column("name", "box_type", "freezer", "shelf", "notes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBox removes a box. Boxes with tubes still inside are protected.
func DeleteBox(ctx context.Context, db bun.IDB, id int64) error {
	count, err := db.NewSelect().
		Model((*models.Tube)(nil)).
		Where("t.box_id = ?", id).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialError{Entity: "box", ID: id, Children: "tubes", Count: count}
	}

	res, err := db.NewDelete().
		Model((*models.Box)(nil)).
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

// BoxesByName maps every box name to a box. Names used by more than one
// box resolve to the lowest ID and are reported in the ambiguous set.
func BoxesByName(ctx context.Context, db bun.IDB) (map[string]*models.Box, map[string]bool, error) {
	var boxes []*models.Box
	err := db.NewSelect().
		Model(&boxes).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	byName := make(map[string]*models.Box, len(boxes))
	ambiguous := make(map[string]bool)
	for _, b := range boxes {
		if _, seen := byName[b.Name]; seen {
			ambiguous[b.Name] = true
			continue
		}
		byName[b.Name] = b
	}
	return byName, ambiguous, nil
}
