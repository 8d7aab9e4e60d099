package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configPath, logLevel = "", ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "searchserver version dev\n", out)
}

func TestRootCommand_RunsShell(t *testing.T) {
	script := strings.Join([]string{
		"add 1 ACTUAL 4 -- curly cat",
		"add 2 ACTUAL 2 -- curly dog",
		"find",
		"ALL",
		"curly -dog",
		"count",
		"exit",
	}, "\n") + "\n"

	out, err := execute(t, script, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 documents:")
	assert.Contains(t, out, "{ document_id = 1, relevance = 0, rating = 4 }")
	assert.Contains(t, out, "Total documents: 2")
	assert.True(t, strings.HasSuffix(out, "Exiting program\n"))

	// a second run registers its metrics on a fresh registry
	_, err = execute(t, "exit\n")
	require.NoError(t, err)
}

func TestRootCommand_BadConfigPath(t *testing.T) {
	_, err := execute(t, "", "--config", "/nonexistent/searchserver.yaml")
	assert.Error(t, err)
}

func TestAnalyticsCommand_RegisteredWithArgsCheck(t *testing.T) {
	_, err := execute(t, "", "analytics", "unexpected")
	assert.Error(t, err)
}

func TestLoadtestCommand(t *testing.T) {
	t.Cleanup(func() {
		loadDocs, loadConcurrency, loadDuration = 10000, 8, 10*time.Second
	})
	out, err := execute(t, "", "loadtest", "--docs", "200", "--concurrency", "2", "--duration", "50ms", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents:   200")
	assert.Contains(t, out, "Total Requests:")
	assert.Contains(t, out, "Errors:          0")
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(5), percentile(sorted, 50))
	assert.Equal(t, time.Duration(10), percentile(sorted, 99))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}
