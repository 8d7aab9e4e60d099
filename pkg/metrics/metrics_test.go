package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.DocsIndexedTotal.Inc()
	m.SearchQueriesTotal.WithLabelValues(ResultZeroResult).Inc()
	m.NoResultRequests.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultZeroResult)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.NoResultRequests))

	// a second registry accepts a second set of collectors
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
	assert.Panics(t, func() { New(reg) })
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.DocsIndexedTotal.Add(2)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "docs_indexed_total 2"))
}
