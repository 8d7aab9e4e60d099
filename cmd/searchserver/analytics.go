package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/middleware"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Aggregate request events from Kafka and serve them over HTTP",
	Long: `Consumes the request events published by search server instances and
serves lifetime totals (top queries, queries with no results, latency
percentiles) at GET /api/v1/analytics on the metrics port.`,
	Args: cobra.NoArgs,
	RunE: runAnalytics,
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("analytics needs kafka.brokers")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, analytics.HandleEvent(aggregator))

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.Start(ctx)
	}()
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.ConsumerGroup)

	checker := health.NewChecker()
	checker.Register("kafka", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: "consuming " + cfg.Kafka.Topic}
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)
	shutdown := metrics.StartServer(cfg.Metrics.Port, reg, middleware.Instrument(m, map[string]http.Handler{
		"/health/live":      checker.LiveHandler(),
		"/health/ready":     checker.ReadyHandler(),
		"/api/v1/analytics": analytics.NewHandler(aggregator),
	}))

	<-ctx.Done()
	slog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown error", "error", err)
	}
	return <-consumerDone
}
