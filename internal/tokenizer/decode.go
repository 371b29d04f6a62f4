package tokenizer

import (
	"fmt"

	"github.com/bpetrain/internal/pretoken"
)

// DecodeBytes concatenates the vocabulary bytes for every ID.
func (t *Tokenizer) DecodeBytes(ids []int) ([]byte, error) {
	total := 0
	for _, id := range ids {
		if id < 0 || id >= len(t.revVocab) {
			return nil, fmt.Errorf("token id %d out of range [0, %d)", id, len(t.revVocab))
		}
		total += len(t.revVocab[id])
	}

	out := make([]byte, 0, total)
	for _, id := range ids {
		out = append(out, t.revVocab[id]...)
	}
	return out, nil
}

// Decode converts token IDs back to text, replacing invalid UTF-8 with
// U+FFFD.
func (t *Tokenizer) Decode(ids []int) (string, error) {
	b, err := t.DecodeBytes(ids)
	if err != nil {
		return "", err
	}
	return pretoken.DecodeReplacing(b), nil
}
