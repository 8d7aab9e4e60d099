package index

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

// MemoryIndex is the append-only document store: an inverted index from word
// to per-document term frequency, the document table, and the order in which
// ids were added. There is a single writer; the lock only protects readers
// running on background goroutines (metrics, health checks).
type MemoryIndex struct {
	mu        sync.RWMutex
	stopWords *stopwords.Set
	index     map[string]map[int]float64
	documents map[int]Document
	order     []int
	logger    *slog.Logger
}

func NewMemoryIndex(stopWords *stopwords.Set) *MemoryIndex {
	return &MemoryIndex{
		stopWords: stopWords,
		index:     make(map[string]map[int]float64),
		documents: make(map[int]Document),
		logger:    slog.Default().With("component", "memory-index"),
	}
}

// AddDocument validates everything before touching the index, so a failed add
// leaves no partial state behind.
func (m *MemoryIndex) AddDocument(docID int, text string, status Status, ratings []int) error {
	if docID < 0 {
		return apperrors.Newf(apperrors.ErrInvalidID, "id %d is negative", docID)
	}
	words, err := m.splitIntoWordsNoStop(text)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[docID]; exists {
		return apperrors.Newf(apperrors.ErrDuplicateID, "id %d", docID)
	}
	if len(words) > 0 {
		invWordCount := 1.0 / float64(len(words))
		for _, word := range words {
			docs, exists := m.index[word]
			if !exists {
				docs = make(map[int]float64)
				m.index[word] = docs
			}
			docs[docID] += invWordCount
		}
	}
	m.documents[docID] = Document{
		ID:     docID,
		Status: status,
		Rating: averageRating(ratings),
	}
	m.order = append(m.order, docID)

	m.logger.Debug("document indexed",
		"doc_id", docID,
		"status", status,
		"word_count", len(words),
	)
	return nil
}

func (m *MemoryIndex) DocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}

// DocumentID returns the id added at the given zero-based position.
func (m *MemoryIndex) DocumentID(position int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if position < 0 || position >= len(m.order) {
		return 0, apperrors.Newf(apperrors.ErrOutOfRange, "position %d, document count %d", position, len(m.order))
	}
	return m.order[position], nil
}

func (m *MemoryIndex) Document(docID int) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[docID]
	return doc, ok
}

// Search returns the postings of word ordered by document id, or nil when
// the word was never indexed.
func (m *MemoryIndex) Search(word string) PostingList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs, exists := m.index[word]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, tf := range docs {
		result = append(result, Posting{DocID: docID, TermFreq: tf})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

// Contains reports whether word occurs in the given document.
func (m *MemoryIndex) Contains(word string, docID int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.index[word][docID]
	return ok
}

// InverseDocumentFrequency is ln(documents / documents containing word). It
// must only be called for words present in the index.
func (m *MemoryIndex) InverseDocumentFrequency(word string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return math.Log(float64(len(m.documents)) / float64(len(m.index[word])))
}

// WordFrequencies returns every indexed word of a document with its term
// frequency. Documents without indexed words yield an empty map.
func (m *MemoryIndex) WordFrequencies(docID int) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.documents[docID]; !ok {
		return nil, apperrors.Newf(apperrors.ErrUnknownDocument, "id %d", docID)
	}
	freqs := make(map[string]float64)
	for word, docs := range m.index {
		if tf, ok := docs[docID]; ok {
			freqs[word] = tf
		}
	}
	return freqs, nil
}

// Terms returns the number of distinct indexed words.
func (m *MemoryIndex) Terms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.index)
}

func (m *MemoryIndex) splitIntoWordsNoStop(text string) ([]string, error) {
	words := make([]string, 0)
	for _, word := range tokenizer.SplitIntoWords(text) {
		if !tokenizer.IsValidWord(word) {
			return nil, apperrors.Newf(apperrors.ErrInvalidWord, "document word %q", word)
		}
		if !m.stopWords.IsStopWord(word) {
			words = append(words, word)
		}
	}
	return words, nil
}

// averageRating truncates toward zero, like integer division.
func averageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
