package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_individuals_individual_id ON individuals(individual_id)",
			"CREATE INDEX IF NOT EXISTS idx_individuals_family_id ON individuals(family_id)",
			"CREATE INDEX IF NOT EXISTS idx_samples_sample_id ON samples(sample_id)",
			"CREATE INDEX IF NOT EXISTS idx_samples_individual_id ON samples(individual_id)",
			"CREATE INDEX IF NOT EXISTS idx_samples_sample_type ON samples(sample_type)",
			"CREATE INDEX IF NOT EXISTS idx_samples_created_at ON samples(created_at)",
			"CREATE INDEX IF NOT EXISTS idx_tubes_barcode ON tubes(barcode)",
			"CREATE INDEX IF NOT EXISTS idx_tubes_sample_id ON tubes(sample_id)",
			"CREATE INDEX IF NOT EXISTS idx_tubes_box_id ON tubes(box_id)",
			"CREATE INDEX IF NOT EXISTS idx_usages_tube_id ON usages(tube_id)",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"DROP INDEX IF EXISTS idx_individuals_individual_id",
			"DROP INDEX IF EXISTS idx_individuals_family_id",
			"DROP INDEX IF EXISTS idx_samples_sample_id",
			"DROP INDEX IF EXISTS idx_samples_individual_id",
			"DROP INDEX IF EXISTS idx_samples_sample_type",
			"DROP INDEX IF EXISTS idx_samples_created_at",
			"DROP INDEX IF EXISTS idx_tubes_barcode",
			"DROP INDEX IF EXISTS idx_tubes_sample_id",
			"DROP INDEX IF EXISTS idx_tubes_box_id",
			"DROP INDEX IF EXISTS idx_usages_tube_id",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	})
}
