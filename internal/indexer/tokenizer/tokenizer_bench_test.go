package tokenizer

import (
	"strings"
	"testing"
)

var sampleTexts = map[string]string{
	"short":  "the quick brown fox jumps over the lazy dog",
	"medium": strings.Repeat("fluffy cat with a fancy collar sits in the garden at noon ", 8),
	"long":   strings.Repeat("groomed dog with expressive eyes and a long curly tail runs across the park ", 200),
}

func BenchmarkSplitIntoWords(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				for _, w := range SplitIntoWords(text) {
					_ = IsValidWord(w)
				}
			}
		})
	}
}
