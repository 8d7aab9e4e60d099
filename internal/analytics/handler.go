package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Report is the body of GET /api/v1/analytics.
type Report struct {
	Totals      AggregatedStats `json:"totals"`
	Window      any             `json:"window,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Handler serves lifetime totals, and the live request window when one is
// attached. ?top=N trims both query rankings.
type Handler struct {
	aggregator *Aggregator
	window     func() any
	logger     *slog.Logger
}

type HandlerOption func(*Handler)

// WithWindow reports fn's value (the tracker's window stats) under "window".
func WithWindow(fn func() any) HandlerOption {
	return func(h *Handler) { h.window = fn }
}

func NewHandler(aggregator *Aggregator, opts ...HandlerOption) *Handler {
	h := &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	top := -1
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}

	report := Report{Totals: h.aggregator.Stats(), GeneratedAt: time.Now().UTC()}
	if top >= 0 {
		report.Totals.TopQueries = truncate(report.Totals.TopQueries, top)
		report.Totals.NoResultQueries = truncate(report.Totals.NoResultQueries, top)
	}
	if h.window != nil {
		report.Window = h.window()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}

func truncate(counts []QueryCount, n int) []QueryCount {
	if len(counts) > n {
		return counts[:n]
	}
	return counts
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
