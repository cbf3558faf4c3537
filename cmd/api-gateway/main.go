package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/clinic-agenda-api/api/swagger"
	"github.com/noah-isme/clinic-agenda-api/internal/handler"
	internalmiddleware "github.com/noah-isme/clinic-agenda-api/internal/middleware"
	"github.com/noah-isme/clinic-agenda-api/internal/models"
	"github.com/noah-isme/clinic-agenda-api/internal/repository"
	"github.com/noah-isme/clinic-agenda-api/internal/service"
	"github.com/noah-isme/clinic-agenda-api/pkg/cache"
	"github.com/noah-isme/clinic-agenda-api/pkg/config"
	"github.com/noah-isme/clinic-agenda-api/pkg/database"
	"github.com/noah-isme/clinic-agenda-api/pkg/export"
	"github.com/noah-isme/clinic-agenda-api/pkg/jobs"
	"github.com/noah-isme/clinic-agenda-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/clinic-agenda-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/clinic-agenda-api/pkg/middleware/requestid"
	"github.com/noah-isme/clinic-agenda-api/pkg/signing"
)

// @title Clinic Agenda API
// @version 1.0.0
// @description Appointment booking and overlap-aware agenda layouts for clinic units.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Redis.Enabled && cfg.Agenda.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			// The agenda still works uncached; every view is recomputed.
			logr.Warn("redis unavailable, agenda cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Agenda.CacheTTL, logr, cacheRepo != nil)

	profiles, err := config.LoadLayoutProfiles(cfg.Layout.ProfilesFile, cfg.Layout)
	if err != nil {
		return err
	}

	appointmentRepo := repository.NewAppointmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	agendaSvc := service.NewAgendaService(appointmentRepo, cacheSvc, metrics, service.AgendaConfig{
		Profiles:  profiles,
		WeekStart: weekStart(cfg.Agenda.WeekStart),
		CacheTTL:  cfg.Agenda.CacheTTL,
	}, logr)

	invalidations := jobs.NewQueue("agenda-invalidation", service.NewInvalidationHandler(agendaSvc, metrics), jobs.QueueConfig{
		Workers:    cfg.Agenda.InvalidationWorkers,
		MaxRetries: cfg.Agenda.InvalidationRetries,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logr,
	})
	invalidations.Start(ctx)
	defer invalidations.Stop()

	validate := service.NewValidator()
	var invalidator interface {
		TryEnqueue(jobs.Job) error
	}
	if cacheSvc.Enabled() {
		invalidator = invalidations
	}
	appointmentSvc := service.NewAppointmentService(appointmentRepo, invalidator, validate, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if err := authSvc.EnsureUser(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName, models.RoleSuperAdmin); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	exportSvc := service.NewExportService(
		agendaSvc,
		signing.NewFeedSigner(cfg.Agenda.FeedSecret, cfg.Agenda.FeedTTL),
		service.ExportConfig{
			APIPrefix:      cfg.APIPrefix,
			FeedPastDays:   cfg.Agenda.FeedPastDays,
			FeedFutureDays: cfg.Agenda.FeedFutureDays,
		},
		logr,
		export.NewCSVExporter(','),
		export.NewPDFExporter(),
		export.NewICSExporter("-//clinic-agenda-api//agenda//EN"),
	)

	scheduler := jobs.NewScheduler(logr)
	if cacheSvc.Enabled() {
		err := scheduler.Add("agenda-prewarm", cfg.Agenda.PrewarmCron, func(ctx context.Context) error {
			return agendaSvc.Prewarm(ctx, time.Now())
		})
		if err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"cache": func(ctx context.Context) error {
			if cacheRepo == nil {
				return nil
			}
			return cacheRepo.Ping(ctx)
		},
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Routes{
		Auth:         handler.NewAuthHandler(authSvc),
		Agenda:       handler.NewAgendaHandler(agendaSvc, exportSvc),
		Appointments: handler.NewAppointmentHandler(appointmentSvc),
		Metrics:      metricsHandler,
		Logger:       logr,
	}.Register(r.Group(strings.TrimRight(cfg.APIPrefix, "/")), internalmiddleware.JWT(authSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func weekStart(raw string) time.Weekday {
	if raw == "sunday" {
		return time.Sunday
	}
	return time.Monday
}
