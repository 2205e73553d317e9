// Command recompute rebuilds every employer metric snapshot once and exits.
// It exits non-zero when the batch aborts or any employer fails.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"jobboard/internal/app"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/observability"
	"jobboard/internal/repository/postgres"
)

const (
	exitOK = iota
	exitAborted
	exitPartial
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", slog.String("error", err.Error()))
		return exitAborted
	}
	logger := observability.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RecomputeTimeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, database.PostgresConfig{
		Driver:          cfg.DBDriver,
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		logger.Error("database unavailable", slog.String("error", err.Error()))
		return exitAborted
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	service := app.NewEmployerSummaryService(userRepo, postgres.NewAnalyticsRepository(db), postgres.NewEmployerMetricRepository(db), app.NewAccessPolicy(userRepo), logger)
	report, err := service.RecomputeAll(ctx)
	if err != nil {
		logger.Error("recompute aborted", slog.String("error", err.Error()), slog.Int("processed", report.Processed))
	}
	return exitCode(report, err)
}

func exitCode(report *app.RecomputeReport, err error) int {
	switch {
	case err != nil:
		return exitAborted
	case report != nil && report.Failed > 0:
		return exitPartial
	default:
		return exitOK
	}
}
