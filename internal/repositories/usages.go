package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
	"github.com/ghfc/dnastock/internal/volume"
)

// ListUsages returns the usage history for a tube, most recent checkout
// first.
func ListUsages(ctx context.Context, db bun.IDB, tubeID int64) ([]*models.Usage, error) {
	var usages []*models.Usage
	err := db.NewSelect().
		Model(&usages).
		Where("u.tube_id = ?", tubeID).
		Order("u.date_out DESC", "u.id DESC").
		Scan(ctx)
	return usages, err
}

// GetUsage fetches a single usage row.
func GetUsage(ctx context.Context, db bun.IDB, id int64) (*models.Usage, error) {
	usage := new(models.Usage)
	err := db.NewSelect().
		Model(usage).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return usage, nil
}

// RecordUsage checks material out of a tube: the withdrawal is applied to
// the tube and the usage row inserted in one transaction, so the ledger
// and the history can never drift apart.
func RecordUsage(ctx context.Context, db *bun.DB, usage *models.Usage) error {
	if err := usage.Validate(); err != nil {
		return err
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		tube := new(models.Tube)
		err := tx.NewSelect().
			Model(tube).
			Where("t.id = ?", *usage.TubeID).
			Scan(ctx)
		if err != nil {
			return wrapNotFound(err)
		}

		if usage.VolumeTaken != nil {
			if err := volume.Withdraw(tube, *usage.VolumeTaken); err != nil {
				return err
			}
			if _, err := tx.NewUpdate().
				Model(tube).
				Column("current_volume", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return err
			}
		}

		_, err = tx.NewInsert().Model(usage).Exec(ctx)
		return err
	})
}

// ReturnUsage marks a checkout as returned.
func ReturnUsage(ctx context.Context, db bun.IDB, usage *models.Usage) error {
	if err := usage.Validate(); err != nil {
		return err
	}
	res, err := db.NewUpdate().
		Model(usage).
		Column("date_return", "notes").
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
