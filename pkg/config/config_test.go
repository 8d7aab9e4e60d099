package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Engine.MaxResults)
	assert.Equal(t, 1440, cfg.Tracker.WindowSize)
	assert.Equal(t, 2, cfg.Shell.PageSize)
	assert.Equal(t, []string{"and", "in", "at"}, cfg.StopWords.All())
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Postgres.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
engine:
  maxResults: 3
stopWords:
  text: "a the"
  words: ["of"]
tracker:
  windowSize: 10
redis:
  enabled: true
  cacheTTL: 5s
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Engine.MaxResults)
	assert.Equal(t, 10, cfg.Tracker.WindowSize)
	assert.Equal(t, []string{"a", "the", "of"}, cfg.StopWords.All())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, math.Nextafter(1, 2)-1, cfg.Engine.RelevanceEpsilon)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SS_TRACKER_WINDOW_SIZE", "4")
	t.Setenv("SS_STOP_WORDS", "x y")
	t.Setenv("SS_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Tracker.WindowSize)
	assert.Equal(t, []string{"x", "y"}, cfg.StopWords.All())
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestStopWordsAll_SplitsOnSpaceOnly(t *testing.T) {
	sw := StopWordsConfig{Text: "and\tin  at", Words: []string{"of"}}
	assert.Equal(t, []string{"and\tin", "at", "of"}, sw.All())

	_, err := stopwords.New(sw.All())
	assert.ErrorIs(t, err, apperrors.ErrInvalidWord)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max results", func(c *Config) { c.Engine.MaxResults = 0 }},
		{"negative epsilon", func(c *Config) { c.Engine.RelevanceEpsilon = -1 }},
		{"zero window", func(c *Config) { c.Tracker.WindowSize = 0 }},
		{"zero page size", func(c *Config) { c.Shell.PageSize = 0 }},
		{"postgres without interval", func(c *Config) {
			c.Postgres.Enabled = true
			c.Postgres.SnapshotInterval = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := Default().Postgres.DSN()
	assert.Equal(t, "host=localhost port=5432 user=searchserver password=localdev dbname=searchserver sslmode=disable", dsn)
}

func TestLoad_ShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "searchserver.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate_KafkaWithoutBrokers(t *testing.T) {
	cfg := Default()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.Validate())
}
