// Package store persists periodic snapshots of request statistics in
// PostgreSQL so they outlive the process.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics/tracker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

const schema = `CREATE TABLE IF NOT EXISTS request_snapshots (
    id          BIGSERIAL PRIMARY KEY,
    data        JSONB NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Snapshot is one persisted point in time.
type Snapshot struct {
	Window     tracker.Stats             `json:"window"`
	Totals     analytics.AggregatedStats `json:"totals"`
	Documents  int                       `json:"documents"`
	CapturedAt time.Time                 `json:"captured_at"`
}

type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "snapshot-store"),
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating request_snapshots table: %w", err)
	}
	return nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO request_snapshots (data, captured_at) VALUES ($1, $2)`,
		data, snap.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("saving request snapshot: %w", err)
	}
	s.logger.Debug("request snapshot saved",
		"requests", snap.Window.Requests,
		"no_result_requests", snap.Window.NoResultRequests,
	)
	return nil
}

// LatestSnapshot returns nil, nil when nothing has been saved yet.
func (s *Store) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM request_snapshots ORDER BY captured_at DESC, id DESC LIMIT 1`,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots returns up to limit snapshots, newest first. Corrupt rows are
// skipped.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM request_snapshots ORDER BY captured_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// StartPeriodicSave saves capture() every interval and once more, with
// retries, when ctx is cancelled. onSave, if set, observes the outcome of
// every write. The returned channel is closed after the final save.
func (s *Store) StartPeriodicSave(ctx context.Context, capture func() Snapshot, interval time.Duration, onSave func(error)) <-chan struct{} {
	if onSave == nil {
		onSave = func(error) {}
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				err := s.SaveSnapshot(ctx, capture())
				if err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
				onSave(err)
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				snap := capture()
				err := resilience.Retry(shutdownCtx, "final snapshot", resilience.RetryConfig{
					MaxAttempts:  3,
					InitialDelay: 200 * time.Millisecond,
				}, func(ctx context.Context) error {
					return s.SaveSnapshot(ctx, snap)
				})
				cancel()
				if err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				onSave(err)
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval)
	return done
}
