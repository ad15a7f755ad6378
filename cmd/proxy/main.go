package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/cwa-proxy-service/internal/adapter/http"
	"github.com/couchcryptid/cwa-proxy-service/internal/adapter/cwa"
	kafkaadapter "github.com/couchcryptid/cwa-proxy-service/internal/adapter/kafka"
	"github.com/couchcryptid/cwa-proxy-service/internal/config"
	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"github.com/couchcryptid/cwa-proxy-service/internal/observability"
	"github.com/couchcryptid/cwa-proxy-service/internal/proxy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := cwa.NewClient(cfg, metrics, logger)
	logger.Info("cwa upstream configured",
		"dataset", cfg.CWATyphoonDataset,
		"feed_url", cfg.CWAWarningsFeedURL,
		"timeout", cfg.CWATimeout,
	)

	// Warning fan-out is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		publisher proxy.WarningPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka warning publisher enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaWarningsTopic)
	} else {
		logger.Info("kafka warning publisher disabled")
	}

	svc := proxy.New(client, domain.DefaultKeywordFilter(), publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	svc.Drain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
