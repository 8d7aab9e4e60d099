package parser

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

// Query is a parsed query. Both term sets are deduplicated and free of stop
// words. A word may sit in both sets; the minus side wins when scoring.
type Query struct {
	PlusTerms  map[string]struct{}
	MinusTerms map[string]struct{}
	RawQuery   string
}

// SortedPlusTerms returns the plus-terms in lexical order.
func (q *Query) SortedPlusTerms() []string {
	return sortedKeys(q.PlusTerms)
}

// SortedMinusTerms returns the minus-terms in lexical order.
func (q *Query) SortedMinusTerms() []string {
	return sortedKeys(q.MinusTerms)
}

type Parser struct {
	stopWords *stopwords.Set
}

func New(stopWords *stopwords.Set) *Parser {
	return &Parser{stopWords: stopWords}
}

func (p *Parser) Parse(raw string) (*Query, error) {
	query := &Query{
		PlusTerms:  make(map[string]struct{}),
		MinusTerms: make(map[string]struct{}),
		RawQuery:   raw,
	}
	for _, word := range tokenizer.SplitIntoWords(raw) {
		term, isMinus, err := parseWord(word)
		if err != nil {
			return nil, err
		}
		if p.stopWords.IsStopWord(term) {
			continue
		}
		if isMinus {
			query.MinusTerms[term] = struct{}{}
		} else {
			query.PlusTerms[term] = struct{}{}
		}
	}
	return query, nil
}

func parseWord(word string) (term string, isMinus bool, err error) {
	if !tokenizer.IsValidWord(word) {
		return "", false, apperrors.Newf(apperrors.ErrInvalidWord, "query word %q", word)
	}
	if word == "-" {
		return "", false, apperrors.New(apperrors.ErrEmptyMinusTerm, "nothing follows the minus sign")
	}
	if strings.HasPrefix(word, "-") {
		isMinus = true
		word = word[1:]
	}
	if strings.HasPrefix(word, "-") {
		return "", false, apperrors.Newf(apperrors.ErrDoubleMinus, "query word %q", "-"+word)
	}
	return word, isMinus, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
