package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations collects the schema migrations registered by the numbered
// files in this package. bun derives each migration's name from the file
// registering it, so registrations must live in <n>_<label>.go files.
var Migrations = migrate.NewMigrations()

// RunMigrations runs all pending migrations.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		fmt.Println("No new migrations to run")
		return nil
	}

	fmt.Printf("Migrated to %s\n", group)
	return nil
}
