package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coursedesk-api/api/swagger"
	"github.com/noah-isme/coursedesk-api/internal/handler"
	"github.com/noah-isme/coursedesk-api/internal/middleware"
	"github.com/noah-isme/coursedesk-api/internal/models"
	"github.com/noah-isme/coursedesk-api/internal/repository"
	"github.com/noah-isme/coursedesk-api/internal/service"
	"github.com/noah-isme/coursedesk-api/pkg/cache"
	"github.com/noah-isme/coursedesk-api/pkg/config"
	"github.com/noah-isme/coursedesk-api/pkg/database"
	"github.com/noah-isme/coursedesk-api/pkg/export"
	"github.com/noah-isme/coursedesk-api/pkg/jobs"
	"github.com/noah-isme/coursedesk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coursedesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coursedesk-api/pkg/middleware/requestid"
	"github.com/noah-isme/coursedesk-api/pkg/storage"
)

// @title CourseDesk API
// @version 1.0.0
// @description Course administration API: enrollment, accounts, sessions and roster exports.
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	accountRepo := repository.NewAccountRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	enrollSvc := service.NewEnrollService(courseRepo, studentRepo, cacheSvc, metricsSvc, validate, logr, service.EnrollConfig{
		MaxRows:  cfg.Enroll.MaxRows,
		CacheTTL: cfg.Cache.TTL,
	})
	accountSvc := service.NewAccountService(accountRepo, courseRepo, studentRepo, instructorRepo, auditRepo, cacheSvc, logr)
	sessionSvc := service.NewSessionService(sessionRepo, validate, logr)

	var exportHandler *handler.ExportHandler
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewExportService(studentRepo, courseRepo, files, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		retries := cfg.Exports.WorkerRetries
		if retries <= 0 {
			retries = 3
		}
		worker := service.NewRosterExportWorker(exportRepo, exporter, retries, logr)
		exportQueue = jobs.NewQueue(service.RosterExportJobKind, worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: retries,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
			OnResult: func(job jobs.Job, err error) {
				if err != nil {
					metricsSvc.RecordExportJob(models.ExportStatusFailed)
					return
				}
				metricsSvc.RecordExportJob(models.ExportStatusFinished)
			},
		})
		exportQueue.Start(ctx)

		rosterSvc := service.NewRosterExportService(exportRepo, courseRepo, exportQueue, exporter, validate, logr, service.RosterExportConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		})
		rosterSvc.RecoverPendingJobs(ctx)
		rosterSvc.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(rosterSvc)
	}

	readiness := map[string]handler.Pinger{
		"postgres": handler.PingFunc(db.PingContext),
	}
	if redisClient != nil {
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)
	enrollHandler := handler.NewEnrollHandler(enrollSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	secured := api.Group("", middleware.JWT(authSvc))

	courses := secured.Group("/courses/:courseId",
		middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor),
		middleware.CourseInstructor(instructorRepo, "courseId"),
	)
	courses.GET("/enroll", enrollHandler.Page)
	courses.POST("/enroll/preview", enrollHandler.Preview)
	courses.PUT("/enroll", middleware.Audit(auditRepo, logr, models.AuditActionEnroll, "course", "courseId"), enrollHandler.Enroll)

	secured.GET("/sessions/search", middleware.RequireRoles(models.RoleAdmin), sessionHandler.Search)

	accounts := secured.Group("/admin/accounts/:googleId", middleware.RequireRoles(models.RoleAdmin))
	accounts.GET("", accountHandler.Get)
	accounts.DELETE("", accountHandler.Delete)
	accounts.DELETE("/students/:courseId", accountHandler.RemoveStudent)
	accounts.DELETE("/instructors/:courseId", accountHandler.RemoveInstructor)

	if exportHandler != nil {
		api.GET("/exports/download", exportHandler.Download)
		secured.GET("/exports/:id", exportHandler.Status)
		courses.POST("/students/export", exportHandler.Create)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	if exportQueue != nil {
		exportQueue.Stop()
	}
}
