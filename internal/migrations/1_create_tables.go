package migrations

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ghfc/dnastock/internal/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		modelsList := []interface{}{
			(*models.Individual)(nil),
			(*models.Sample)(nil),
			(*models.Box)(nil),
			(*models.Tube)(nil),
			(*models.Usage)(nil),
		}

		for _, model := range modelsList {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		modelsList := []interface{}{
			(*models.Usage)(nil),
			(*models.Tube)(nil),
			(*models.Box)(nil),
			(*models.Sample)(nil),
			(*models.Individual)(nil),
		}

		for _, model := range modelsList {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}
