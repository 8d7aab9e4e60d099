// Package stopwords holds the immutable set of words that are excluded from
// both indexing and querying.
package stopwords

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

type Set struct {
	words map[string]struct{}
}

// New builds a Set from candidate words. Duplicates and empty strings are
// dropped; a word containing a control character fails the whole set.
func New(words []string) (*Set, error) {
	set := &Set{words: make(map[string]struct{}, len(words))}
	for _, word := range words {
		if word == "" {
			continue
		}
		if !tokenizer.IsValidWord(word) {
			return nil, apperrors.Newf(apperrors.ErrInvalidWord, "stop word %q", word)
		}
		set.words[word] = struct{}{}
	}
	return set, nil
}

// FromText builds a Set from space-separated text.
func FromText(text string) (*Set, error) {
	return New(tokenizer.SplitIntoWords(text))
}

// IsStopWord is safe to call on a nil Set, which contains nothing.
func (s *Set) IsStopWord(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns the stop words in lexical order.
func (s *Set) Words() []string {
	if s == nil {
		return nil
	}
	words := make([]string, 0, len(s.words))
	for word := range s.words {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}
