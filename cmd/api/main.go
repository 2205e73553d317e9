package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard/internal/app"
	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"
	apphttp "jobboard/internal/http"
	"jobboard/internal/http/handlers"
	"jobboard/internal/http/metrics"
	httpmw "jobboard/internal/http/middleware"
	"jobboard/internal/http/response"
	"jobboard/internal/observability"
	"jobboard/internal/repository/postgres"
	"jobboard/internal/scheduler"
	"jobboard/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, database.PostgresConfig{
		Driver:          cfg.DBDriver,
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		logger.Error("database unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Error("migration failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory fallbacks", slog.String("error", err.Error()))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	userRepo := postgres.NewUserRepository(db)
	jobRepo := postgres.NewJobRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	metricRepo := postgres.NewApplicationMetricRepository(db)
	analyticsRepo := postgres.NewAnalyticsRepository(db)
	employerMetricRepo := postgres.NewEmployerMetricRepository(db)

	var dashboards cache.Cache = cache.NoopCache{}
	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if redisClient != nil {
		dashboards = cache.NewRedisCache(redisClient, "jobboard:analytics")
		limiter = httpmw.NewRedisLimiter(redisClient, "jobboard:ratelimit:")
	}

	policy := app.NewAccessPolicy(userRepo)
	analyticsService := app.NewAnalyticsService(policy, analyticsRepo, dashboards, cfg.AnalyticsCacheTTL, logger)
	summaryService := app.NewEmployerSummaryService(userRepo, analyticsRepo, employerMetricRepo, policy, logger)
	trendService := app.NewApplicationMetricService(metricRepo, jobRepo, analyticsRepo)
	jobService := app.NewJobService(jobRepo)
	applicationService := app.NewApplicationService(applicationRepo, metricRepo, jobRepo, logger)

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	recomputeScheduler, err := scheduler.New(cfg.RecomputeSchedule, summaryService, collector, cfg.RecomputeTimeout, logger)
	if err != nil {
		logger.Error("scheduler error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	recomputeScheduler.Start(ctx)
	if cfg.RecomputeOnStart {
		go func() {
			_, _ = recomputeScheduler.RunNow()
		}()
	}

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		JobHandler:         handlers.NewJobHandler(jobService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, limiter),
		AnalyticsHandler:   handlers.NewAnalyticsHandler(analyticsService, summaryService, trendService),
		MaintenanceHandler: handlers.NewMaintenanceHandler(summaryService, collector, cfg.InternalKey, logger),
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		AuthMiddleware:     httpmw.NewAuthMiddleware(security.NewJWTProvider(cfg.JWTSecret)),
		Limiter:            limiter,
		AnalyticsPerMinute: cfg.AnalyticsPerMin,
		Metrics:            collector,
		RequestTimeout:     cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := recomputeScheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("recompute still running at shutdown", slog.String("error", err.Error()))
	}
}
