package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/site-tracker/engine/internal/api"
	"github.com/site-tracker/engine/internal/api/handlers"
	mw "github.com/site-tracker/engine/internal/api/middleware"
	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/auth"
	"github.com/site-tracker/engine/internal/migrations"
	"github.com/site-tracker/engine/internal/ratelimit"
	"github.com/site-tracker/engine/internal/repository"
	"github.com/site-tracker/engine/internal/services"
	"github.com/site-tracker/engine/internal/storage"
	"github.com/site-tracker/engine/pkg/config"
	"github.com/site-tracker/engine/pkg/database"
	"github.com/site-tracker/engine/pkg/logger"

	_ "github.com/site-tracker/engine/docs"
)

// @title           Site Tracker API
// @version         1.0
// @description     Construction site daily logs, attachments and progress reports.

// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting site tracker api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.Open(ctx, database.Options{
		Driver:  cfg.DatabaseDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if cfg.DatabaseDriver == "sqlite" {
		// sqlite is a local-only setup, there is no separate migrate step
		if err := migrations.Run(db); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access connection pool", zap.Error(err))
	}
	log.Info("database connected", zap.String("driver", cfg.DatabaseDriver))

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	folders := repository.NewFolderRepository(db)
	logs := repository.NewLogRepository(db)
	attachments := repository.NewAttachmentRepository(db)
	auditor := audit.NewAuditor(repository.NewAuditRepository(db))

	store, err := storage.New(ctx, storage.Settings{
		Driver:    cfg.StorageDriver,
		Endpoint:  cfg.StorageEndpoint,
		Region:    cfg.StorageRegion,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
		PublicURL: cfg.StoragePublicURL,
		Folder:    cfg.StorageFolder,
	})
	if err != nil {
		log.Fatal("object store init failed", zap.Error(err))
	}

	var purger services.Purger = services.NewInlinePurger(store)
	var limiter ratelimit.Limiter = ratelimit.NewLocalLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	var queue *asynq.Client
	var rdb *redis.Client
	if cfg.QueueEnabled() {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		queue = asynq.NewClient(redisOpt)
		purger = services.NewQueuePurger(queue, purger)

		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		shared, err := ratelimit.NewRedisFixedWindowLimiter(rdb, "site-tracker:auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
		if err != nil {
			log.Warn("redis limiter unavailable, using in-process limits", zap.Error(err))
		} else {
			limiter = shared
		}
	}

	trusted, err := mw.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatal("invalid TRUSTED_PROXIES", zap.Error(err))
	}

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	limits := services.UploadLimits{MaxFiles: cfg.UploadMaxFiles, MaxBytes: cfg.UploadMaxBytes}

	authSvc := services.NewAuthService(users, tokens, auditor)
	projectSvc := services.NewProjectService(projects, folders, logs, attachments, purger, auditor)
	folderSvc := services.NewFolderService(projects, folders, auditor)
	logSvc := services.NewLogService(projects, folders, logs, attachments, purger, auditor)
	attachmentSvc := services.NewAttachmentService(projects, logs, attachments, users, store, purger, auditor, limits)
	reportSvc := services.NewReportService(projects, logs, attachments, cfg.UploadDir)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := api.NewRouter(api.Dependencies{
		Tokens:         tokens,
		AuthLimiter:    limiter,
		TrustedProxies: trusted,
		CORSOrigin:     cfg.CORSOrigin,
		Registry:       reg,

		HealthHandler:      handlers.NewHealthHandler(sqlDB),
		AuthHandler:        handlers.NewAuthHandler(authSvc, cfg.ResetTokenResponse),
		ProjectsHandler:    handlers.NewProjectsHandler(projectSvc),
		FoldersHandler:     handlers.NewFoldersHandler(folderSvc),
		LogsHandler:        handlers.NewLogsHandler(logSvc),
		AttachmentsHandler: handlers.NewAttachmentsHandler(attachmentSvc, limits),
		ReportsHandler:     handlers.NewReportsHandler(reportSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}

	auditor.Wait()
	if queue != nil {
		_ = queue.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := database.Close(db); err != nil {
		log.Warn("database close error", zap.Error(err))
	}
}
