// Command import-dump loads a legacy MySQL stock dump into the inventory
// database: boxes, arrivals as samples, and tubes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/config"
	"github.com/ghfc/dnastock/internal/database"
	"github.com/ghfc/dnastock/internal/importer"
	"github.com/ghfc/dnastock/internal/logging"
	"github.com/ghfc/dnastock/internal/migrations"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	dbPath := flag.String("db", "", "database path (overrides config)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: import-dump [flags] <dump.sql>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.NewDB(cfg.Database.Path, cfg.Database.Debug)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.RunMigrations(ctx, db); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	dump, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Fatal("read dump", zap.Error(err))
	}

	summary, err := importer.ImportDump(ctx, db, logger, string(dump), cfg.Import.BatchSize, cfg.Import.MaxErrors)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Tubes created:       %d\n", summary.Created)
	fmt.Printf("Boxes created:       %d\n", summary.BoxesCreated)
	fmt.Printf("Samples created:     %d\n", summary.SamplesCreated)
	fmt.Printf("Samples reused:      %d\n", summary.SamplesReused)
	fmt.Printf("Linked:              %d\n", summary.Linked)
	fmt.Printf("Unlinked:            %d\n", summary.Unlinked)
	fmt.Printf("Duplicate barcodes:  %d\n", summary.DuplicateBarcode)
	fmt.Printf("Duplicate positions: %d\n", summary.DuplicatePosition)
	fmt.Printf("Without barcode:     %d\n", summary.NoBarcode)
	fmt.Printf("Rows in error:       %d\n", summary.ErrorsTotal)
	for _, warning := range summary.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	for _, e := range summary.Errors {
		fmt.Printf("error: %s\n", e)
	}
	if suppressed := summary.ErrorsTotal - len(summary.Errors); suppressed > 0 {
		fmt.Printf("(%d more errors not shown)\n", suppressed)
	}
}
