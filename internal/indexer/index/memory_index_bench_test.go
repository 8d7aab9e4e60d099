package index

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
)

const benchText = "search engine with distributed indexing and query processing in memory"

func benchIndex(b *testing.B, docs int) *MemoryIndex {
	b.Helper()
	stop, err := stopwords.FromText("and in at with")
	if err != nil {
		b.Fatal(err)
	}
	mi := NewMemoryIndex(stop)
	for i := 0; i < docs; i++ {
		if err := mi.AddDocument(i, fmt.Sprintf("%s doc%d", benchText, i%100), StatusActual, []int{i % 10}); err != nil {
			b.Fatal(err)
		}
	}
	return mi
}

// BenchmarkMemoryIndexAdd measures per-document insert throughput.
func BenchmarkMemoryIndexAdd(b *testing.B) {
	mi := benchIndex(b, 0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := mi.AddDocument(i, benchText, StatusActual, []int{1, 2, 3}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMemoryIndexSearch measures a single-word lookup over 10 000
// documents.
func BenchmarkMemoryIndexSearch(b *testing.B) {
	mi := benchIndex(b, 10000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = mi.Search("doc7")
	}
}

// BenchmarkMemoryIndexSearchParallel measures concurrent read throughput.
func BenchmarkMemoryIndexSearchParallel(b *testing.B) {
	mi := benchIndex(b, 10000)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = mi.Search("doc7")
		}
	})
}
