package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/grid"
	"github.com/ghfc/dnastock/internal/models"
)

// TubeFilter narrows ListTubes results.
type TubeFilter struct {
	Search   string
	BoxID    int64
	SampleID int64
	Status   models.TubeStatus
	TubeType models.TubeType
	Limit    int
	Offset   int
}

func applyTubeFilter(q *bun.SelectQuery, f TubeFilter) *bun.SelectQuery {
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.
			Join("LEFT JOIN samples AS sp ON sp.id = t.sample_id").
			Join("LEFT JOIN individuals AS i ON i.id = sp.individual_id").
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("t.barcode LIKE ?", pattern).
					WhereOr("sp.sample_id LIKE ?", pattern).
					WhereOr("i.individual_id LIKE ?", pattern).
					WhereOr("i.aliases LIKE ?", pattern)
			})
	}
	if f.BoxID > 0 {
		q = q.Where("t.box_id = ?", f.BoxID)
	}
	if f.SampleID > 0 {
		q = q.Where("t.sample_id = ?", f.SampleID)
	}
	if f.TubeType != "" {
		q = q.Where("t.tube_type = ?", f.TubeType)
	}

	// The status buckets partition all tubes: a tube matches exactly one
	// of the four filters below.
	switch f.Status {
	case models.StatusEmpty:
		q = q.Where("t.current_volume IS NULL OR t.current_volume <= 0")
	case models.StatusCritical:
		q = q.Where("t.current_volume > 0 AND t.current_volume < ?", models.CriticalVolumeThreshold)
	case models.StatusLow:
		q = q.Where("t.current_volume >= ?", models.CriticalVolumeThreshold).
			Where("t.initial_volume IS NOT NULL AND t.initial_volume > 0").
			Where("t.current_volume < t.initial_volume * ?", models.LowVolumeFraction)
	case models.StatusAvailable:
		q = q.Where("t.current_volume >= ?", models.CriticalVolumeThreshold).
			Where("t.initial_volume IS NULL OR t.initial_volume <= 0 OR t.current_volume >= t.initial_volume * ?", models.LowVolumeFraction)
	}
	return q
}

// ListTubes returns tubes matching the filter with sample, individual and
// box loaded, ordered by barcode.
func ListTubes(ctx context.Context, db bun.IDB, f TubeFilter) ([]*models.Tube, error) {
	var tubes []*models.Tube
	q := applyTubeFilter(db.NewSelect().Model(&tubes), f).
		Relation("Sample").
		Relation("Sample.Individual").
		Relation("Box").
		Order("t.barcode ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	err := q.Scan(ctx)
	return tubes, err
}

// CountTubes returns the total matching the filter, for pagination.
func CountTubes(ctx context.Context, db bun.IDB, f TubeFilter) (int, error) {
	return applyTubeFilter(db.NewSelect().Model((*models.Tube)(nil)), f).Count(ctx)
}

// GetTube fetches a tube with its sample, individual, box and usage history.
func GetTube(ctx context.Context, db bun.IDB, id int64) (*models.Tube, error) {
	tube := new(models.Tube)
	err := db.NewSelect().
		Model(tube).
		Where("t.id = ?", id).
		Relation("Sample").
		Relation("Sample.Individual").
		Relation("Box").
		Relation("Usages", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("date_out DESC", "id DESC")
		}).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return tube, nil
}

// GetTubeByBarcode fetches a tube by barcode.
func GetTubeByBarcode(ctx context.Context, db bun.IDB, barcode string) (*models.Tube, error) {
	tube := new(models.Tube)
	err := db.NewSelect().
		Model(tube).
		Where("t.barcode = ?", barcode).
		Relation("Sample").
		Relation("Box").
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return tube, nil
}

// InsertTube stores a new tube.
func InsertTube(ctx context.Context, db bun.IDB, tube *models.Tube) error {
	if err := tube.Validate(); err != nil {
		return err
	}
	_, err := db.NewInsert().Model(tube).Exec(ctx)
	return wrapDuplicate(err, "barcode", tube.Barcode)
}

// InsertTubes stores a batch of tubes in one statement.
func InsertTubes(ctx context.Context, db bun.IDB, tubes []*models.Tube) error {
	if len(tubes) == 0 {
		return nil
	}
	for _, tube := range tubes {
		if err := tube.Validate(); err != nil {
			return err
		}
	}
	_, err := db.NewInsert().Model(&tubes).Exec(ctx)
	return err
}

// UpdateTube rewrites the mutable columns of a tube.
func UpdateTube(ctx context.Context, db bun.IDB, tube *models.Tube) error {
	if err := tube.Validate(); err != nil {
		return err
	}
	res, err := db.NewUpdate().
		Model(tube).
		Column("barcode", "sample_id", "box_id", "position_row", "position_col",
			"tube_type", "concentration", "initial_volume", "current_volume",
			"quality", "source", "notes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapDuplicate(err, "barcode", tube.Barcode)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTube removes a tube. Tubes with usage history are protected.
func DeleteTube(ctx context.Context, db bun.IDB, id int64) error {
	count, err := db.NewSelect().
		Model((*models.Usage)(nil)).
		Where("u.tube_id = ?", id).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ReferentialError{Entity: "tube", ID: id, Children: "usages", Count: count}
	}

	res, err := db.NewDelete().
		Model((*models.Tube)(nil)).
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

// OccupiedPositions maps the filled wells of a box to the barcode of the
// tube occupying each one.
func OccupiedPositions(ctx context.Context, db bun.IDB, boxID int64) (map[grid.Coord]string, error) {
	var tubes []*models.Tube
	err := db.NewSelect().
		Model(&tubes).
		Column("t.barcode", "t.position_row", "t.position_col").
		Where("t.box_id = ?", boxID).
		Where("t.position_row IS NOT NULL AND t.position_col IS NOT NULL").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	occupied := make(map[grid.Coord]string, len(tubes))
	for _, t := range tubes {
		occupied[grid.Coord{Row: *t.PositionRow, Col: *t.PositionCol}] = t.Barcode
	}
	return occupied, nil
}

// SeenBarcodes returns the set of every barcode in the database.
func SeenBarcodes(ctx context.Context, db bun.IDB) (map[string]bool, error) {
	var barcodes []string
	err := db.NewSelect().
		Model((*models.Tube)(nil)).
		Column("t.barcode").
		Scan(ctx, &barcodes)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(barcodes))
	for _, b := range barcodes {
		seen[b] = true
	}
	return seen, nil
}
