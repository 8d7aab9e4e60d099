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
	"golang.org/x/term"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics/tracker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/server"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/shell"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "searchserver",
	Short:        "In-memory TF-IDF search engine with an interactive shell",
	SilenceUsage: true,
	RunE:         runShell,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
}

// loadConfig reads the config and installs the default logger on stderr so
// the shell owns stdout.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	return cfg, nil
}

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopWords, err := stopwords.New(cfg.StopWords.All())
	if err != nil {
		return fmt.Errorf("building stop words: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	checker := health.NewChecker()
	opts := server.Options{
		MaxResults:       cfg.Engine.MaxResults,
		RelevanceEpsilon: cfg.Engine.RelevanceEpsilon,
		Metrics:          m,
	}

	if cfg.Redis.Enabled {
		rc, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer rc.Close()
			breaker := resilience.NewCircuitBreaker("redis", resilience.BreakerConfig{
				OnStateChange: func(name string, from, to resilience.State) {
					slog.Warn("query cache circuit changed", "backend", name, "from", from, "to", to)
				},
			})
			opts.Cache = cache.New(cache.NewGuardedStore(rc, breaker), cfg.Redis.CacheTTL)
			checker.Register("redis", pingCheck(rc.Ping))
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	srv := server.New(stopWords, opts)
	checker.Register("index", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", srv.DocumentCount(), srv.TermCount()),
		}
	})

	// Background work stops on bgCancel so the final Kafka flush and
	// snapshot run before the process exits, also after "exit".
	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()

	aggregator := analytics.NewAggregator()
	trackerOpts := []tracker.Option{tracker.WithMetrics(m), tracker.WithSink(aggregator)}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Kafka)
		collector.OnDrop(m.EventsDroppedTotal.Inc)
		collector.Start(bgCtx)
		defer collector.Close()
		trackerOpts = append(trackerOpts, tracker.WithSink(collector))
		checker.Register("kafka", func(context.Context) health.ComponentHealth {
			return health.ComponentHealth{Status: health.StatusUp, Message: "publishing to " + cfg.Kafka.Topic}
		})
		slog.Info("request events enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	tr := tracker.New(srv, cfg.Tracker.WindowSize, trackerOpts...)

	if cfg.Postgres.Enabled {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, snapshots disabled", "host", cfg.Postgres.Host, "error", err)
		} else {
			defer db.Close()
			snapshots := store.New(db)
			if err := snapshots.EnsureSchema(ctx); err != nil {
				return err
			}
			if prev, err := snapshots.LatestSnapshot(ctx); err == nil && prev != nil {
				slog.Info("previous snapshot found",
					"captured_at", prev.CapturedAt,
					"requests", prev.Window.Requests,
					"no_result_requests", prev.Window.NoResultRequests,
				)
			}
			done := snapshots.StartPeriodicSave(bgCtx, func() store.Snapshot {
				return store.Snapshot{
					Window:    tr.Stats(),
					Totals:    aggregator.Stats(),
					Documents: srv.DocumentCount(),
				}
			}, cfg.Postgres.SnapshotInterval, func(err error) {
				status := "ok"
				if err != nil {
					status = "error"
				}
				m.SnapshotsSavedTotal.WithLabelValues(status).Inc()
			})
			defer waitFor(done, 10*time.Second)
			checker.Register("postgres", pingCheck(db.Ping))
		}
	}

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg, middleware.Instrument(m, map[string]http.Handler{
			"/health/live":      checker.LiveHandler(),
			"/health/ready":     checker.ReadyHandler(),
			"/api/v1/analytics": analytics.NewHandler(aggregator, analytics.WithWindow(func() any { return tr.Stats() })),
		}))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	sh := shell.New(srv, tr, cmd.InOrStdin(), cmd.OutOrStdout(), shell.Options{
		PageSize:   cfg.Shell.PageSize,
		Prompt:     cfg.Shell.Prompt,
		ShowPrompt: term.IsTerminal(int(os.Stdin.Fd())),
	})
	err = sh.Run(ctx)
	bgCancel()
	return err
}

func pingCheck(ping func(context.Context) error) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		if err := ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	}
}

func waitFor(done <-chan struct{}, timeout time.Duration) {
	select {
	case <-done:
	case <-time.After(timeout):
		slog.Warn("timed out waiting for background shutdown")
	}
}
