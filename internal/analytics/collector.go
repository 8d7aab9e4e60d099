package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
)

// Publisher writes a batch of events; *kafka.Producer satisfies it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers request events on a channel and publishes them in batches,
// when the batch is full or the flush interval elapses. Track never blocks:
// events that do not fit the buffer are dropped.
type Collector struct {
	publisher     Publisher
	eventCh       chan RequestEvent
	batchSize     int
	flushInterval time.Duration
	onDrop        func()
	logger        *slog.Logger
	done          chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewCollector(publisher Publisher, cfg config.KafkaConfig) *Collector {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		eventCh:       make(chan RequestEvent, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		onDrop:        func() {},
		logger:        slog.Default().With("component", "request-collector"),
		done:          make(chan struct{}),
	}
}

// OnDrop registers a callback run for every dropped event. Call before Start.
func (c *Collector) OnDrop(fn func()) {
	c.onDrop = fn
}

// Start launches the publish loop. Cancelling ctx or calling Close flushes
// whatever is still buffered.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.flush(context.Background(), batch)
					return
				}
				batch = append(batch, kafka.Event{Key: event.Query, Value: event})
				if len(batch) >= c.batchSize {
					c.flush(ctx, batch)
					batch = batch[:0]
				}
			case <-ticker.C:
				c.flush(ctx, batch)
				batch = batch[:0]
			case <-ctx.Done():
				batch = c.drainInto(batch)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx, batch)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("request collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track enqueues an event for publishing.
func (c *Collector) Track(event RequestEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.onDrop()
		c.logger.Warn("request event dropped (buffer full)", "query", event.Query)
	}
}

// Close stops accepting events and waits for the final flush.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) drainInto(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, kafka.Event{Key: event.Query, Value: event})
		default:
			return batch
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	if err := c.publisher.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("failed to publish request events",
			"count", len(batch),
			"error", err,
		)
	}
}
