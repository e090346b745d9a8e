package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ghfc/dnastock/internal/config"
	"github.com/ghfc/dnastock/internal/database"
	httpapi "github.com/ghfc/dnastock/internal/http"
	"github.com/ghfc/dnastock/internal/logging"
	"github.com/ghfc/dnastock/internal/migrations"
	"github.com/ghfc/dnastock/internal/ratelimit"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	dbPath := flag.String("db", "", "database path (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
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

	limiter := ratelimit.NewLimiter(cfg.Export.RateLimit)
	router := httpapi.NewRouter(db, logger, limiter, cfg.Export.RowLimit)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
