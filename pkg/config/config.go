// Package config loads and validates the search server configuration from a
// YAML file with environment-variable overrides. Every tunable the engine
// used to hard-code (result cap, tracker window, stop words, page size) lives
// here so tests can shrink them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
)

// Config is the top-level application configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	StopWords StopWordsConfig `yaml:"stopWords"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Shell     ShellConfig     `yaml:"shell"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Postgres  PostgresConfig  `yaml:"postgres"`
}

// EngineConfig controls ranking.
type EngineConfig struct {
	MaxResults       int     `yaml:"maxResults"`
	RelevanceEpsilon float64 `yaml:"relevanceEpsilon"`
}

// StopWordsConfig lists the stop words, either as free text split on
// spaces like document text, or as an explicit list. Both sources are merged.
type StopWordsConfig struct {
	Text  string   `yaml:"text"`
	Words []string `yaml:"words"`
}

// All returns the combined candidate stop words. Text is split by the
// document tokenizer, so a tab or newline stays inside a word and the word is
// later rejected as invalid.
func (s StopWordsConfig) All() []string {
	words := tokenizer.SplitIntoWords(s.Text)
	return append(words, s.Words...)
}

// TrackerConfig sizes the request-history window.
type TrackerConfig struct {
	WindowSize int `yaml:"windowSize"`
}

// ShellConfig controls the interactive shell.
type ShellConfig struct {
	PageSize int    `yaml:"pageSize"`
	Prompt   string `yaml:"prompt"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics and health server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// RedisConfig holds the optional query-result cache settings.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds the optional request-event publisher settings. The
// consumer group is only used by the analytics subcommand.
type KafkaConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	Topic         string        `yaml:"topic"`
	ConsumerGroup string        `yaml:"consumerGroup"`
	BufferSize    int           `yaml:"bufferSize"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
}

// PostgresConfig holds the optional tracker snapshot store settings.
type PostgresConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Database         string        `yaml:"database"`
	User             string        `yaml:"user"`
	Password         string        `yaml:"password"`
	SSLMode          string        `yaml:"sslMode"`
	MaxOpenConns     int           `yaml:"maxOpenConns"`
	MaxIdleConns     int           `yaml:"maxIdleConns"`
	ConnMaxLifetime  time.Duration `yaml:"connMaxLifetime"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the stock configuration: five results, a 1440-request
// window and the stop words "and in at".
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxResults:       5,
			RelevanceEpsilon: 0x1p-52,
		},
		StopWords: StopWordsConfig{
			Text: "and in at",
		},
		Tracker: TrackerConfig{
			WindowSize: 1440,
		},
		Shell: ShellConfig{
			PageSize: 2,
			Prompt:   "> ",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			Topic:         "search-requests",
			ConsumerGroup: "searchserver-analytics",
			BufferSize:    1024,
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:             "localhost",
			Port:             5432,
			Database:         "searchserver",
			User:             "searchserver",
			Password:         "localdev",
			SSLMode:          "disable",
			MaxOpenConns:     5,
			MaxIdleConns:     2,
			ConnMaxLifetime:  5 * time.Minute,
			SnapshotInterval: time.Minute,
		},
	}
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.MaxResults <= 0 {
		return fmt.Errorf("engine.maxResults must be positive, got %d", c.Engine.MaxResults)
	}
	if c.Engine.RelevanceEpsilon < 0 {
		return fmt.Errorf("engine.relevanceEpsilon must not be negative, got %g", c.Engine.RelevanceEpsilon)
	}
	if c.Tracker.WindowSize <= 0 {
		return fmt.Errorf("tracker.windowSize must be positive, got %d", c.Tracker.WindowSize)
	}
	if c.Shell.PageSize <= 0 {
		return fmt.Errorf("shell.pageSize must be positive, got %d", c.Shell.PageSize)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must not be empty when kafka is enabled")
	}
	if c.Postgres.Enabled && c.Postgres.SnapshotInterval <= 0 {
		return fmt.Errorf("postgres.snapshotInterval must be positive when postgres is enabled")
	}
	return nil
}

// applyEnvOverrides reads SS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SS_ENGINE_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxResults = n
		}
	}
	if v := os.Getenv("SS_TRACKER_WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.WindowSize = n
		}
	}
	if v := os.Getenv("SS_STOP_WORDS"); v != "" {
		cfg.StopWords.Text = v
		cfg.StopWords.Words = nil
	}
	if v := os.Getenv("SS_SHELL_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Shell.PageSize = n
		}
	}
	if v := os.Getenv("SS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SS_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
			cfg.Metrics.Enabled = true
		}
	}
	if v := os.Getenv("SS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("SS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("SS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
		cfg.Postgres.Enabled = true
	}
	if v := os.Getenv("SS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
}
