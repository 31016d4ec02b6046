package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/auth"
	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/engine"
	"github.com/xiltepin/InsuranceAIPOCs/internal/extract"
	"github.com/xiltepin/InsuranceAIPOCs/internal/handler"
	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
	"github.com/xiltepin/InsuranceAIPOCs/internal/middleware"
	"github.com/xiltepin/InsuranceAIPOCs/internal/port"
	"github.com/xiltepin/InsuranceAIPOCs/internal/recovery"
	"github.com/xiltepin/InsuranceAIPOCs/internal/router"
	"github.com/xiltepin/InsuranceAIPOCs/internal/service"
	s3storage "github.com/xiltepin/InsuranceAIPOCs/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog := logger.New(cfg.Log)
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		zlog.Info("image archiving enabled", zap.String("bucket", cfg.S3.Bucket))
	}

	// Initialize engine
	eng := engine.NewProcessEngine(cfg.Engine, zlog)
	if err := eng.Check(ctx); err != nil {
		// Not fatal: /readyz reports it until the engine is installed.
		zlog.Warn("recognition engine not ready", zap.Error(err))
	}

	// Initialize services
	ocrSvc := service.NewOCRService(eng, recovery.DefaultChain(zlog), extract.NewEngine(zlog), zlog)
	uploadSvc := service.NewUploadService(&cfg.Upload, &cfg.S3, storage, zlog)

	// Initialize handlers
	ocrH := handler.NewOCRHandler(ocrSvc, uploadSvc, cfg.Upload.MaxFileSizeBytes())
	exportH := handler.NewExportHandler()
	healthH := handler.NewHealthHandler(eng, storage, cfg.S3.Bucket)

	var tokens middleware.TokenValidator
	if cfg.Auth.Enabled() {
		tokens = auth.NewIssuer(&cfg.Auth)
		zlog.Info("service token auth enabled", zap.String("issuer", cfg.Auth.Issuer))
	}

	// Setup router
	r := router.Setup(cfg, zlog, tokens, ocrH, exportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
