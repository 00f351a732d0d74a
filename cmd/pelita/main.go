package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pelita-edu/pelita/internal/app"
	"github.com/pelita-edu/pelita/internal/auth"
	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/enrollment"
	"github.com/pelita-edu/pelita/internal/grants"
	"github.com/pelita-edu/pelita/internal/observability"
	"github.com/pelita-edu/pelita/internal/platform/cache"
	"github.com/pelita-edu/pelita/internal/platform/db"
	"github.com/pelita-edu/pelita/internal/schools"
	"github.com/pelita-edu/pelita/internal/shared"
	"github.com/pelita-edu/pelita/internal/staff"
	"github.com/pelita-edu/pelita/internal/students"
	"github.com/pelita-edu/pelita/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "pelita_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	authzStore := authz.NewPGStore(dbpool)
	resolver := authz.NewResolver(authzStore)
	engine := authz.NewEngine(authzStore, authzStore, logger, metrics)

	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	schoolsRepo := schools.NewRepository(dbpool)
	schoolsService := schools.NewService(schoolsRepo, engine, logger)
	schoolsHandler := schools.NewHandler(logger, schoolsService)

	grantsRepo := grants.NewRepository(dbpool)
	grantsService := grants.NewService(grantsRepo, engine, auditLogger, logger)
	grantsHandler := grants.NewHandler(logger, grantsService)

	studentsRepo := students.NewRepository(dbpool)
	studentsService := students.NewService(studentsRepo, engine, logger)
	studentsHandler := students.NewHandler(logger, studentsService)

	staffRepo := staff.NewRepository(dbpool)
	staffService := staff.NewService(staffRepo, engine, logger)
	staffHandler := staff.NewHandler(logger, staffService)

	enrollmentRepo := enrollment.NewRepository(dbpool)
	enrollmentService := enrollment.NewService(enrollmentRepo, engine, auditLogger, logger)
	enrollmentHandler := enrollment.NewHandler(logger, enrollmentService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		ActorResolver:     resolver,
		AuthHandler:       authHandler,
		SchoolsHandler:    schoolsHandler,
		GrantsHandler:     grantsHandler,
		StudentsHandler:   studentsHandler,
		StaffHandler:      staffHandler,
		EnrollmentHandler: enrollmentHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
