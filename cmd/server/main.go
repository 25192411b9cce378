package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/handler"
	"github.com/openlms/facetoface-api/internal/middleware"
	"github.com/openlms/facetoface-api/internal/models"
	"github.com/openlms/facetoface-api/internal/repository"
	"github.com/openlms/facetoface-api/internal/service"
	"github.com/openlms/facetoface-api/pkg/cache"
	"github.com/openlms/facetoface-api/pkg/config"
	"github.com/openlms/facetoface-api/pkg/database"
	"github.com/openlms/facetoface-api/pkg/jobs"
	"github.com/openlms/facetoface-api/pkg/logger"
	corsmiddleware "github.com/openlms/facetoface-api/pkg/middleware/cors"
	reqidmiddleware "github.com/openlms/facetoface-api/pkg/middleware/requestid"
	"github.com/openlms/facetoface-api/pkg/storage"
)

const uploadRetention = 24 * time.Hour

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	uploadStore, err := storage.NewLocalStorage(cfg.Bookings.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	facetofaceRepo := repository.NewFacetofaceRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	signupRepo := repository.NewSignupRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	visibilityRepo := repository.NewVisibilityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	notifications := service.NewNotificationService(notificationRepo, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	bookingService := service.NewBookingService(
		facetofaceRepo, userRepo, sessionRepo, enrollmentRepo, signupRepo,
		notifications,
		service.BookingDefaults{
			CaseSensitiveEmail: cfg.Bookings.CaseSensitiveEmail,
			SuppressEmails:     cfg.Bookings.SuppressEmails,
		},
		logr,
	)
	uploadService := service.NewUploadService(uploadStore, bookingService, cfg.Bookings.MaxUploadSizeBytes, logr)
	attendanceService := service.NewAttendanceService(sessionRepo, signupRepo, logr)
	sessionService := service.NewSessionService(sessionRepo, logr)
	facetofaceService := service.NewFacetofaceService(facetofaceRepo, cfg.Approvals.Enabled, logr)
	capabilityService := service.NewCapabilityService(visibilityRepo, cacheRepo, cfg.Visibility.CacheTTL, logr)
	metricsService := service.NewMetricsService()

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	bookingHandler := handler.NewBookingHandler(bookingService, uploadService, metricsService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	facetofaceHandler := handler.NewFacetofaceHandler(facetofaceService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	authed.GET("/auth/me", authHandler.Me)

	staff := authed.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer))
	staff.GET("/facetoface/:id/bookings/template", bookingHandler.Template)
	staff.POST("/facetoface/:id/bookings/validate", bookingHandler.Validate)
	staff.POST("/facetoface/:id/bookings/uploads", bookingHandler.Upload)
	staff.POST("/facetoface/:id/bookings/uploads/:uploadId/process", bookingHandler.ProcessUpload)

	authed.GET("/facetoface/:id", facetofaceHandler.Get)
	authed.GET("/facetoface/:id/sessions", sessionHandler.ListByActivity)
	authed.GET("/sessions/:sessionId", sessionHandler.Get)

	attendance := authed.Group("")
	attendance.Use(middleware.RequireStaffVisibility(capabilityService))
	attendance.GET("/sessions/:sessionId/attendance", attendanceHandler.Sheet)
	attendance.GET("/sessions/:sessionId/attendance/export/csv", attendanceHandler.ExportCSV)
	attendance.GET("/sessions/:sessionId/attendance/export/pdf", attendanceHandler.ExportPDF)

	go cleanupUploads(ctx, uploadStore, logr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// cleanupUploads sweeps stale booking uploads that were stashed but never
// processed.
func cleanupUploads(ctx context.Context, store *storage.LocalStorage, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupOlderThan(uploadRetention)
			if err != nil {
				logr.Sugar().Warnw("upload cleanup failed", "error", err)
				continue
			}
			if len(removed) > 0 {
				logr.Sugar().Infow("stale uploads removed", "count", len(removed))
			}
		}
	}
}
