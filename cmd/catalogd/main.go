// Package main wires together the catalog parse service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shishl0/kaspi-catalog/internal/api"
	"github.com/shishl0/kaspi-catalog/internal/cache"
	"github.com/shishl0/kaspi-catalog/internal/catalog"
	"github.com/shishl0/kaspi-catalog/internal/config"
	"github.com/shishl0/kaspi-catalog/internal/extract"
	"github.com/shishl0/kaspi-catalog/internal/fetch"
	"github.com/shishl0/kaspi-catalog/internal/logging"
	"github.com/shishl0/kaspi-catalog/internal/metrics"
	"github.com/shishl0/kaspi-catalog/internal/ratelimit"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	norm, err := catalog.NewNormalizer(cfg.Catalog.Origin, cfg.Catalog.PlaceholderImage)
	if err != nil {
		logger.Fatal("normalizer init failed", zap.Error(err))
	}
	engine := extract.NewEngine(norm, cfg.Catalog.CategoryLabel, logger.Named("extract"))
	fetcher := fetch.New(fetch.Config{
		UserAgent:      cfg.Upstream.UserAgent,
		Accept:         cfg.Upstream.Accept,
		AcceptLanguage: cfg.Upstream.AcceptLanguage,
		Referer:        cfg.Catalog.Origin + "/",
		Timeout:        cfg.UpstreamTimeout(),
		RPS:            cfg.Upstream.RPS,
		Burst:          cfg.Upstream.Burst,
	}, logger.Named("fetch"))
	limiter := ratelimit.New(ratelimit.Config{
		Window:      cfg.RateLimitWindow(),
		MaxRequests: cfg.RateLimit.MaxRequests,
		MinInterval: cfg.RateLimitMinInterval(),
	})
	responseCache := cache.New(cfg.CacheTTL())

	apiServer := api.NewServer(cfg, limiter, responseCache, fetcher, engine, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}
