// Static resource server.
//
// Mounts three versioned resource handlers on a plain mux:
// - a public filesystem directory
// - the embedded default asset bundle
// - an S3 bucket (optional)
// plus Prometheus metrics on a separate listener.
package main

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ycmag/pippo/internal/config"
	"github.com/ycmag/pippo/internal/httpcache"
	"github.com/ycmag/pippo/internal/logging"
	"github.com/ycmag/pippo/internal/metrics"
	"github.com/ycmag/pippo/internal/mimetypes"
	"github.com/ycmag/pippo/internal/resource"
	"github.com/ycmag/pippo/webassets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("resource server starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := httpcache.New(time.Duration(cfg.CacheMaxAge) * time.Second)
	mimes := mimetypes.New()

	mux := http.NewServeMux()

	// Public directory
	dirResolver, err := resource.NewDirResolver(cfg.PublicDir)
	if err != nil {
		logging.Fatal("public dir init failed", zap.Error(err))
	}
	publicHandler := resource.NewHandler(cfg.PublicPrefix, dirResolver, cache, mimes, logging.L())
	mux.Handle(cfg.PublicPrefix+"/", publicHandler)
	logging.Info("serving public directory",
		zap.String("dir", cfg.PublicDir), zap.String("prefix", cfg.PublicPrefix))

	// Embedded asset bundle
	assetsHandler := resource.NewHandler(cfg.AssetsPrefix, resource.NewFSResolver(webassets.Assets), cache, mimes, logging.L())
	mux.Handle(cfg.AssetsPrefix+"/", assetsHandler)
	logVersionedAssets(ctx, assetsHandler)

	// S3 bucket (optional)
	if cfg.S3Enabled() {
		s3Resolver, err := resource.NewS3Resolver(ctx, resource.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Bucket:       cfg.S3Bucket,
			KeyPrefix:    cfg.S3KeyPrefix,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Region:       cfg.S3Region,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			logging.Fatal("s3 resolver init failed", zap.Error(err))
		}
		mux.Handle(cfg.S3Prefix+"/", resource.NewHandler(cfg.S3Prefix, s3Resolver, cache, mimes, logging.L()))
		logging.Info("serving s3 bucket",
			zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metrics.Handler(),
	}
	go func() {
		logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("metrics server error", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: logging.Middleware(metrics.Middleware(mux)),
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		metricsServer.Close()
	}()

	logging.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("server error", zap.Error(err))
	}
	logging.Info("server stopped")
}

// logVersionedAssets logs the cache-busting URL of every embedded asset so
// page templates can be checked against the served paths.
func logVersionedAssets(ctx context.Context, h *resource.Handler) {
	fs.WalkDir(webassets.Assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		versioned, err := h.InjectVersion(ctx, path)
		if err != nil {
			logging.Warn("version injection failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		logging.Debug("asset available",
			zap.String("path", h.Prefix()+"/"+path),
			zap.String("versioned", h.Prefix()+"/"+versioned))
		return nil
	})
}
