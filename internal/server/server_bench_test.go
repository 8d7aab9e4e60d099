package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
)

var benchWords = []string{"cat", "dog", "fluffy", "groomed", "collar", "tail", "eyes", "starling", "park", "garden"}

func benchServer(b *testing.B, docs int, withCache bool) *SearchServer {
	b.Helper()
	stop, err := stopwords.FromText("and in at")
	if err != nil {
		b.Fatal(err)
	}
	opts := Options{MaxResults: 5, RelevanceEpsilon: ranker.MachineEpsilon}
	if withCache {
		opts.Cache = cache.New(&memoryStore{data: make(map[string]string)}, time.Minute)
	}
	s := New(stop, opts)
	for i := 0; i < docs; i++ {
		text := fmt.Sprintf("%s %s %s", benchWords[i%len(benchWords)], benchWords[(i*7)%len(benchWords)], benchWords[(i*3)%len(benchWords)])
		if err := s.AddDocument(i, text, index.Status(i%4), []int{i % 10, 5}); err != nil {
			b.Fatal(err)
		}
	}
	return s
}

// BenchmarkFindTopDocuments compares the uncached pipeline with cache hits.
func BenchmarkFindTopDocuments(b *testing.B) {
	for _, withCache := range []bool{false, true} {
		b.Run(fmt.Sprintf("cache=%v", withCache), func(b *testing.B) {
			s := benchServer(b, 10000, withCache)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.FindTopDocuments(ctx, "fluffy cat -starling", nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFindTopDocumentsParallel(b *testing.B) {
	s := benchServer(b, 10000, false)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := s.FindTopDocuments(ctx, benchWords[i%len(benchWords)], nil); err != nil {
				b.Fatal(err)
			}
			i++
		}
	})
}
