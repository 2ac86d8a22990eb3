package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/coaching-fees-api/api/swagger"
	"github.com/noah-isme/coaching-fees-api/internal/handler"
	"github.com/noah-isme/coaching-fees-api/internal/middleware"
	"github.com/noah-isme/coaching-fees-api/internal/models"
	"github.com/noah-isme/coaching-fees-api/internal/repository"
	"github.com/noah-isme/coaching-fees-api/internal/service"
	"github.com/noah-isme/coaching-fees-api/pkg/cache"
	"github.com/noah-isme/coaching-fees-api/pkg/config"
	"github.com/noah-isme/coaching-fees-api/pkg/database"
	"github.com/noah-isme/coaching-fees-api/pkg/jobs"
	"github.com/noah-isme/coaching-fees-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coaching-fees-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coaching-fees-api/pkg/middleware/requestid"
	"github.com/noah-isme/coaching-fees-api/pkg/storage"

	"go.uber.org/zap"
)

// @title Coaching Fees API
// @version 1.0.0
// @description Fee status derivation, payments and attendance sessions for the coaching institute app
// @BasePath /api/v1
// @schemes http
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	metricsService := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Billing.CacheTTL, logr, cfg.Billing.CacheEnabled && redisClient != nil)
	tokenService := service.NewTokenService(cfg.JWT)
	feeService := service.NewFeeService(courseRepo, enrollmentRepo, paymentRepo, cacheService, metricsService, validate, logr)
	attendanceService := service.NewAttendanceService(sessionRepo, metricsService, validate, logr, cfg.Attendance.RecentlyClosedWindow)
	historyService := service.NewHistoryService(paymentRepo, sessionRepo, enrollmentRepo, courseRepo, logr)

	var exportHandler *handler.ExportHandler
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService := service.NewExportService(exportJobRepo, historyService, fileStore, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, validate, logr)
		exportQueue = jobs.NewQueue("history-exports", exportService.HandleJob, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(context.Background())
		defer exportQueue.Stop()
		exportService.SetQueue(exportQueue)
		exportHandler = handler.NewExportHandler(exportService)
	}

	feeHandler := handler.NewFeeHandler(feeService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	historyHandler := handler.NewHistoryHandler(historyService)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("")
	authed.Use(middleware.JWT(tokenService))
	{
		authed.GET("/courses", feeHandler.List)
		authed.GET("/courses/:courseId/fees/status", feeHandler.Status)
		authed.GET("/courses/:courseId/fees/action", feeHandler.Action)
		authed.POST("/courses/:courseId/payments", feeHandler.SubmitPayment)

		authed.GET("/classes/:classId/sessions/current", attendanceHandler.ClassView)
		authed.POST("/sessions", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), attendanceHandler.Start)
		authed.POST("/sessions/:sessionId/present", attendanceHandler.MarkPresent)
		authed.POST("/sessions/sweep", middleware.RequireRoles(models.RoleAdmin), attendanceHandler.Sweep)

		authed.GET("/history/payments", historyHandler.Payments)
		authed.GET("/history/sessions", historyHandler.Sessions)

		authed.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

		if exportHandler != nil {
			authed.POST("/history/export", exportHandler.Request)
			authed.GET("/history/export/:jobId", exportHandler.Status)
		}
	}
	if exportHandler != nil {
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	if cfg.Attendance.SweepEnabled {
		scheduler := cron.New()
		spec := fmt.Sprintf("@every %s", cfg.Attendance.SweepInterval)
		if _, err := scheduler.AddFunc(spec, func() {
			if _, err := attendanceService.Sweep(context.Background()); err != nil {
				logr.Warn("scheduled sweep failed", zap.Error(err))
			}
		}); err != nil {
			logr.Sugar().Fatalw("failed to schedule session sweep", "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
