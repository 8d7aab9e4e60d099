package executor

import (
	"log/slog"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

type SearchResult struct {
	Query     string             `json:"query"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
}

type Options struct {
	MaxResults       int
	RelevanceEpsilon float64
}

type Executor struct {
	index  *index.MemoryIndex
	parser *parser.Parser
	opts   Options
	logger *slog.Logger
}

func New(idx *index.MemoryIndex, p *parser.Parser, opts Options) *Executor {
	return &Executor{
		index:  idx,
		parser: p,
		opts:   opts,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// FindTopDocuments parses raw and executes it. A nil rule means Actual.
func (e *Executor) FindTopDocuments(raw string, rule filter.Rule) (*SearchResult, error) {
	query, err := e.parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	return e.Execute(query, rule), nil
}

// Execute scores every document accepted by rule that holds at least one
// plus-term, drops every document holding a minus-term, and ranks the rest.
func (e *Executor) Execute(query *parser.Query, rule filter.Rule) *SearchResult {
	rule = filter.OrDefault(rule)
	relevance := make(map[int]float64)
	for _, term := range query.SortedPlusTerms() {
		postings := e.index.Search(term)
		if len(postings) == 0 {
			continue
		}
		idf := e.index.InverseDocumentFrequency(term)
		for _, p := range postings {
			doc, _ := e.index.Document(p.DocID)
			if rule.Accept(doc.ID, doc.Status, doc.Rating) {
				relevance[p.DocID] += p.TermFreq * idf
			}
		}
	}
	for term := range query.MinusTerms {
		for _, p := range e.index.Search(term) {
			delete(relevance, p.DocID)
		}
	}

	ratingOf := func(docID int) int {
		doc, _ := e.index.Document(docID)
		return doc.Rating
	}
	ranked := ranker.Rank(relevance, ratingOf, e.opts.RelevanceEpsilon, e.opts.MaxResults)
	e.logger.Debug("query executed",
		"query", query.RawQuery,
		"plus_terms", len(query.PlusTerms),
		"minus_terms", len(query.MinusTerms),
		"candidates", len(relevance),
		"results", len(ranked),
	)
	return &SearchResult{
		Query:     query.RawQuery,
		TotalHits: len(relevance),
		Results:   ranked,
	}
}

// MatchDocument lists the plus-terms of raw found in the document, in lexical
// order. Any minus-term found in the document empties the list.
func (e *Executor) MatchDocument(raw string, docID int) ([]string, index.Status, error) {
	query, err := e.parser.Parse(raw)
	if err != nil {
		return nil, 0, err
	}
	doc, ok := e.index.Document(docID)
	if !ok {
		return nil, 0, apperrors.Newf(apperrors.ErrUnknownDocument, "id %d", docID)
	}
	for term := range query.MinusTerms {
		if e.index.Contains(term, docID) {
			return []string{}, doc.Status, nil
		}
	}
	matched := make([]string, 0, len(query.PlusTerms))
	for term := range query.PlusTerms {
		if e.index.Contains(term, docID) {
			matched = append(matched, term)
		}
	}
	sort.Strings(matched)
	return matched, doc.Status, nil
}
