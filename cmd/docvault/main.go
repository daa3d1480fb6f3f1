package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marmos91/docvault/internal/logger"
	"github.com/marmos91/docvault/pkg/config"
	"github.com/marmos91/docvault/pkg/content"
	"github.com/marmos91/docvault/pkg/docstore"
	"github.com/marmos91/docvault/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flag overrides config.
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetLevel(level)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("docvault - encrypted document registry")
	logger.Info("Log level set to: %s", level)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = startMetricsServer(cfg.Metrics.ListenAddress)
	}

	store, err := config.CreateStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to create registry store: %v", err)
	}

	blobs, err := config.CreateContentStore(ctx, &cfg.Content)
	if err != nil {
		store.Close()
		log.Fatalf("Failed to create content store: %v", err)
	}

	logger.Info("Node configuration:")
	logger.Info("  Registry store: %s", cfg.Store.Type)
	logger.Info("  Content store: %s", cfg.Content.Type)
	logger.Info("  Refresh cooldown: %v", cfg.Sync.RefreshCooldown)
	logger.Info("  Shutdown timeout: %v", cfg.Server.ShutdownTimeout)
	if cfg.Metrics.Enabled {
		logger.Info("  Metrics: http://%s/metrics", cfg.Metrics.ListenAddress)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Node is running. Press Ctrl+C to stop.")
	<-sigChan

	logger.Info("Shutdown signal received, initiating graceful shutdown...")
	cancel()

	if err := shutdown(store, blobs, metricsServer, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("Shutdown error: %v", err)
		os.Exit(1)
	}
	logger.Info("Node stopped gracefully")
}

// startMetricsServer exposes the Prometheus registry over HTTP in the
// background.
func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

// shutdown closes the metrics server and both stores, bounded by the
// configured timeout.
func shutdown(store docstore.Store, blobs content.ContentStore, metricsServer *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server shutdown: %v", err)
		}
	}

	done := make(chan error, 1)
	go func() {
		if err := store.Close(); err != nil {
			done <- fmt.Errorf("failed to close registry store: %w", err)
			return
		}
		done <- blobs.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out after %v", timeout)
	}
}
