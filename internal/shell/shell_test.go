package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics/tracker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/server"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

func runScript(t *testing.T, opts Options, lines ...string) string {
	t.Helper()
	stop, err := stopwords.FromText("and in at")
	require.NoError(t, err)
	srv := server.New(stop, server.Options{MaxResults: 5, RelevanceEpsilon: ranker.MachineEpsilon})
	tr := tracker.New(srv, tracker.DefaultWindowSize)

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, New(srv, tr, in, &out, opts).Run(context.Background()))
	return out.String()
}

func TestRun_AddFindCount(t *testing.T) {
	out := runScript(t, Options{PageSize: 2},
		"add",
		"0 ACTUAL 8 -3 -- white cat and fancy collar",
		"add 1 ACTUAL 7 2 7 -- fluffy cat fluffy tail",
		"add 2 ACTUAL 5 -12 2 1 -- groomed dog expressive eyes",
		"add 3 BANNED 9 -- groomed starling eugene",
		"count",
		"find",
		"ACTUAL",
		"fluffy groomed cat",
		"exit",
		"count",
	)

	want := strings.Join([]string{
		"Search Engine started. Type 'help' for commands.",
		"Enter: id status rating1 rating2 ... ratingN -- document text",
		"Document added successfully",
		"Document added successfully",
		"Document added successfully",
		"Document added successfully",
		"Total documents: 4",
		"Enter status (ACTUAL, IRRELEVANT, BANNED, REMOVED, or multiple statuses separated by spaces, or ALL):",
		"Enter search query:",
		"Found 3 documents:",
		"Page 1:",
		"{ document_id = 1, relevance = 0.866434, rating = 5 }",
		"{ document_id = 0, relevance = 0.173287, rating = 2 }",
		"Page 2:",
		"{ document_id = 2, relevance = 0.173287, rating = -1 }",
		"Exiting program",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestRun_Errors(t *testing.T) {
	out := runScript(t, Options{},
		"add 1 ACTUAL -- cat",
		"add 1 ACTUAL -- dog",
		"add x ACTUAL -- dog",
		"find",
		"PENDING",
		"find",
		"ALL",
		"cat -",
		"frobnicate",
	)
	assert.Contains(t, out, "Error: document id already exists: id 1")
	assert.Contains(t, out, `Error: invalid input: invalid document id "x"`)
	assert.Contains(t, out, `Error: invalid input: invalid status "PENDING"`)
	assert.Contains(t, out, "Error: empty minus term")
	assert.Contains(t, out, "Unknown command. Type 'help' for available commands.")
}

func TestRun_NoResultsStatsAndMatch(t *testing.T) {
	out := runScript(t, Options{Prompt: "> ", ShowPrompt: true},
		"add 7 IRRELEVANT 1 -- curly dog",
		"find",
		"",
		"curly",
		"find",
		"IRRELEVANT BANNED",
		"curly",
		"match",
		"7",
		"curly cat",
		"stats",
	)
	assert.Contains(t, out, "> Document added successfully")
	assert.Contains(t, out, "No documents found")
	assert.Contains(t, out, "{ document_id = 7, relevance = 0, rating = 1 }")
	assert.Contains(t, out, "Document 7 (IRRELEVANT): curly")
	assert.Contains(t, out, "Requests in window: 2/1440")
	assert.Contains(t, out, "No-result requests: 1")
}

func TestRun_EOFMidCommand(t *testing.T) {
	out := runScript(t, Options{}, "find", "ALL")
	assert.True(t, strings.HasSuffix(out, "Enter search query:\n"))
}

func TestParseAddCommand(t *testing.T) {
	req, err := ParseAddCommand("5 BANNED 1 2 3 --  some   text here")
	require.NoError(t, err)
	assert.Equal(t, AddRequest{ID: 5, Status: index.StatusBanned, Ratings: []int{1, 2, 3}, Text: "some text here"}, req)

	req, err = ParseAddCommand("5 ACTUAL -- text")
	require.NoError(t, err)
	assert.Empty(t, req.Ratings)

	for _, bad := range []string{
		"5 -- text",
		"5 ACTUAL 1 2",
		"5 ACTUAL 1 --",
		"5 ACTUAL one -- text",
		"5 UNKNOWN -- text",
	} {
		_, err := ParseAddCommand(bad)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), bad)
	}
}

func TestParseStatusRule(t *testing.T) {
	all, err := ParseStatusRule("ALL")
	require.NoError(t, err)
	for _, s := range index.AllStatuses {
		assert.True(t, all.Accept(0, s, 0))
	}

	some, err := ParseStatusRule("BANNED REMOVED")
	require.NoError(t, err)
	assert.True(t, some.Accept(0, index.StatusRemoved, 0))
	assert.False(t, some.Accept(0, index.StatusActual, 0))
}

func TestFormatDocument(t *testing.T) {
	assert.Equal(t, "{ document_id = 3, relevance = 0.231049, rating = 9 }",
		FormatDocument(ranker.ScoredDoc{DocID: 3, Relevance: 0.23104906018664842, Rating: 9}))
}
