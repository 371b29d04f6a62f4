package tokenizer

import (
	"strings"
	"testing"

	"github.com/bpetrain/internal/trainer"
)

func benchTokenizer(b *testing.B) *Tokenizer {
	b.Helper()
	counts := map[string]int{
		"the": 500, " the": 900, " quick": 120, " brown": 110, " fox": 100,
		" jumps": 90, " over": 200, " lazy": 80, " dog": 95, ".": 300,
	}
	res, err := trainer.TrainFromCounts(counts, trainer.Config{VocabSize: 350})
	if err != nil {
		b.Fatalf("training failed: %v", err)
	}
	tok, err := New(res.Vocab, res.Merges, nil)
	if err != nil {
		b.Fatalf("failed to build tokenizer: %v", err)
	}
	return tok
}

func BenchmarkEncode(b *testing.B) {
	tok := benchTokenizer(b)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)

	b.ResetTimer()
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		tok.Encode(text)
	}
}

func BenchmarkDecode(b *testing.B) {
	tok := benchTokenizer(b)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)
	ids := tok.Encode(text)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tok.Decode(ids); err != nil {
			b.Fatal(err)
		}
	}
}
