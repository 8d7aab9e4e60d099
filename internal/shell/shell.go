// Package shell implements the line-oriented command loop of the search
// server: documents are added and queried interactively, results are printed
// a page at a time.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics/tracker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/paginate"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/tracing"
)

const helpText = `Available commands:
  add [<id> <status> <rating1> ... <ratingN> -- <text>] : Add a document
  find : Search for documents
  match : List the query words found in a document
  count : Show document count
  stats : Show request statistics
  help : Show this message
  exit : Exit the program
`

// Engine is the document side of the search server.
type Engine interface {
	AddDocument(docID int, text string, status index.Status, ratings []int) error
	DocumentCount() int
	MatchDocument(raw string, docID int) ([]string, index.Status, error)
}

// Requester runs and records searches; *tracker.Tracker satisfies it.
type Requester interface {
	AddFindRequest(ctx context.Context, raw string, rule filter.Rule) ([]ranker.ScoredDoc, error)
	Stats() tracker.Stats
}

type Options struct {
	PageSize int
	Prompt   string
	// ShowPrompt prints Prompt before every command; off for piped input.
	ShowPrompt bool
}

type Shell struct {
	engine    Engine
	requester Requester
	in        *bufio.Scanner
	out       io.Writer
	opts      Options
	logger    *slog.Logger
}

func New(engine Engine, requester Requester, in io.Reader, out io.Writer, opts Options) *Shell {
	if opts.PageSize <= 0 {
		opts.PageSize = 2
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Shell{
		engine:    engine,
		requester: requester,
		in:        scanner,
		out:       out,
		opts:      opts,
		logger:    logger.WithComponent("shell"),
	}
}

// Run reads commands until "exit", end of input, or ctx is cancelled.
// Command errors are printed and the loop continues; only read failures are
// returned.
func (s *Shell) Run(ctx context.Context) error {
	s.println("Search Engine started. Type 'help' for commands.")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if s.opts.ShowPrompt {
			fmt.Fprint(s.out, s.opts.Prompt)
		}
		line, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}
		command, args, _ := strings.Cut(strings.TrimSpace(line), " ")
		if command == "" {
			continue
		}

		requestID := uuid.NewString()
		reqCtx := logger.WithRequestID(ctx, requestID)
		reqCtx, span := tracing.StartSpan(reqCtx, command, requestID)
		done, err := s.dispatch(reqCtx, command, strings.TrimSpace(args))
		span.End()
		span.Log(reqCtx, logger.FromContext(reqCtx))
		if err != nil {
			logger.FromContext(reqCtx).Debug("command failed", "command", command, "error", err)
			s.println("Error: " + err.Error())
		}
		if done {
			return s.in.Err()
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, command, args string) (done bool, err error) {
	switch command {
	case "help":
		fmt.Fprint(s.out, helpText)
	case "add":
		return s.add(args)
	case "find":
		return s.find(ctx)
	case "match":
		return s.match()
	case "count":
		s.println(fmt.Sprintf("Total documents: %d", s.engine.DocumentCount()))
	case "stats":
		st := s.requester.Stats()
		s.println(fmt.Sprintf("Requests in window: %d/%d", st.Requests, st.WindowSize))
		s.println(fmt.Sprintf("No-result requests: %d", st.NoResultRequests))
		s.println(fmt.Sprintf("Total requests: %d", st.TotalRequests))
	case "exit":
		s.println("Exiting program")
		return true, nil
	default:
		s.println("Unknown command. Type 'help' for available commands.")
	}
	return false, nil
}

func (s *Shell) add(args string) (bool, error) {
	input := args
	if input == "" {
		s.println("Enter: id status rating1 rating2 ... ratingN -- document text")
		line, ok := s.readLine()
		if !ok {
			return true, nil
		}
		input = line
	}
	req, err := ParseAddCommand(input)
	if err != nil {
		return false, err
	}
	if err := s.engine.AddDocument(req.ID, req.Text, req.Status, req.Ratings); err != nil {
		return false, err
	}
	s.println("Document added successfully")
	return false, nil
}

func (s *Shell) find(ctx context.Context) (bool, error) {
	s.println("Enter status (ACTUAL, IRRELEVANT, BANNED, REMOVED, or multiple statuses separated by spaces, or ALL):")
	statusLine, ok := s.readLine()
	if !ok {
		return true, nil
	}
	rule, err := ParseStatusRule(statusLine)
	if err != nil {
		return false, err
	}
	s.println("Enter search query:")
	query, ok := s.readLine()
	if !ok {
		return true, nil
	}

	docs, err := s.requester.AddFindRequest(ctx, query, rule)
	if err != nil {
		return false, err
	}
	if len(docs) == 0 {
		s.println("No documents found")
		return false, nil
	}

	pages, err := paginate.New(docs, s.opts.PageSize)
	if err != nil {
		return false, err
	}
	s.println(fmt.Sprintf("Found %d documents:", len(docs)))
	for i, page := range pages.All() {
		s.println(fmt.Sprintf("Page %d:", i+1))
		for _, doc := range page {
			s.println(FormatDocument(doc))
		}
	}
	return false, nil
}

func (s *Shell) match() (bool, error) {
	s.println("Enter document id:")
	idLine, ok := s.readLine()
	if !ok {
		return true, nil
	}
	docID, err := strconv.Atoi(strings.TrimSpace(idLine))
	if err != nil {
		return false, apperrors.Newf(apperrors.ErrInvalidInput, "invalid document id %q", strings.TrimSpace(idLine))
	}
	s.println("Enter search query:")
	query, ok := s.readLine()
	if !ok {
		return true, nil
	}
	words, status, err := s.engine.MatchDocument(query, docID)
	if err != nil {
		return false, err
	}
	if len(words) == 0 {
		s.println(fmt.Sprintf("Document %d (%s): no matching words", docID, status))
		return false, nil
	}
	s.println(fmt.Sprintf("Document %d (%s): %s", docID, status, strings.Join(words, " ")))
	return false, nil
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimRight(s.in.Text(), "\r"), true
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

// FormatDocument renders a result the way the shell prints it, with the
// relevance in six significant digits.
func FormatDocument(doc ranker.ScoredDoc) string {
	return fmt.Sprintf("{ document_id = %d, relevance = %s, rating = %d }",
		doc.DocID, strconv.FormatFloat(doc.Relevance, 'g', 6, 64), doc.Rating)
}

// AddRequest is a parsed add command.
type AddRequest struct {
	ID      int
	Status  index.Status
	Ratings []int
	Text    string
}

// ParseAddCommand parses "id STATUS r1 ... rN -- text".
func ParseAddCommand(input string) (AddRequest, error) {
	parts := tokenizer.SplitIntoWords(input)
	sep := -1
	for i, p := range parts {
		if p == "--" {
			sep = i
			break
		}
	}
	if sep < 2 {
		return AddRequest{}, apperrors.New(apperrors.ErrInvalidInput,
			"invalid add command format: missing '--' or insufficient arguments before it")
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return AddRequest{}, apperrors.Newf(apperrors.ErrInvalidInput, "invalid document id %q", parts[0])
	}
	status, err := index.ParseStatus(parts[1])
	if err != nil {
		return AddRequest{}, err
	}
	ratings := make([]int, 0, sep-2)
	for _, r := range parts[2:sep] {
		rating, err := strconv.Atoi(r)
		if err != nil {
			return AddRequest{}, apperrors.Newf(apperrors.ErrInvalidInput, "invalid rating %q", r)
		}
		ratings = append(ratings, rating)
	}
	text := strings.Join(parts[sep+1:], " ")
	if text == "" {
		return AddRequest{}, apperrors.New(apperrors.ErrInvalidInput, "document text cannot be empty")
	}
	return AddRequest{ID: id, Status: status, Ratings: ratings, Text: text}, nil
}

// ParseStatusRule turns the find prompt answer into a rule: "ALL" accepts
// every document, otherwise a space-separated list of statuses. A blank answer
// selects ACTUAL.
func ParseStatusRule(input string) (filter.Rule, error) {
	input = strings.TrimSpace(input)
	switch input {
	case "":
		return filter.Actual(), nil
	case "ALL":
		return filter.Any(), nil
	}
	var statuses []index.Status
	for _, word := range tokenizer.SplitIntoWords(input) {
		status, err := index.ParseStatus(word)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return filter.Statuses(statuses...), nil
}
