// Package tokenizer applies a trained BPE model: it splits input on
// special tokens, pre-tokenizes ordinary spans, replays the recorded
// merges per pre-token, and maps symbols to token IDs and back.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/bpetrain/internal/persist"
	"github.com/bpetrain/internal/trainer"
)

// Tokenizer holds immutable model data derived from a BPE vocab/merges set
// which is safe for concurrent use. Invariants we maintain:
//   - revVocab[id] is the exact byte sequence for token ID 'id'.
//   - For every byte b in [0..255], byteToToken[b] gives a valid base token ID.
//   - pairs.lookup(A, B) = (rank, C) means merging adjacent tokens A, B
//     produces token C, with rank its position in the recorded merge list.
type Tokenizer struct {
	// for decoding, index = token_id, value is byte sequence
	revVocab [][]byte
	// seed the first pass of the encoder from raw bytes; in a byte-level
	// BPE tokenizer, every possible byte 0..255 must have a mapping.
	byteToToken [256]int
	// recorded merges as (left, right) -> rank and merged token
	pairs   *pairTable
	maxRank int
	// declared special tokens, declaration order, and their IDs
	specials   []string
	specialIDs map[string]int

	scratchPool sync.Pool
}

// New builds a Tokenizer from a trained vocabulary, the recorded merges in
// creation order, and the declared special tokens. Every special must be
// present in the vocabulary.
func New(vocab map[int][]byte, merges []trainer.Pair, specials []string) (*Tokenizer, error) {
	revVocab, bytesToID, err := buildRevVocab(vocab)
	if err != nil {
		return nil, fmt.Errorf("failed to build revVocab: %w", err)
	}

	byteToToken, err := buildByteToToken(revVocab)
	if err != nil {
		return nil, fmt.Errorf("failed to build byteToToken: %w", err)
	}

	rules := make(map[[2]int]pairRule, len(merges))
	for rank, m := range merges {
		left, ok := bytesToID[string(m.Left)]
		if !ok {
			return nil, fmt.Errorf("merge %d: left symbol %q not in vocab", rank, m.Left)
		}
		right, ok := bytesToID[string(m.Right)]
		if !ok {
			return nil, fmt.Errorf("merge %d: right symbol %q not in vocab", rank, m.Right)
		}
		merged, ok := bytesToID[string(m.Left)+string(m.Right)]
		if !ok {
			return nil, fmt.Errorf("merge %d: merged symbol %q not in vocab", rank, string(m.Left)+string(m.Right))
		}

		pair := [2]int{left, right}
		if _, exists := rules[pair]; exists {
			return nil, fmt.Errorf("duplicate merge pair (%q, %q)", m.Left, m.Right)
		}
		rules[pair] = pairRule{rank: int32(rank), token: int32(merged)}
	}

	specialIDs := make(map[string]int, len(specials))
	for _, s := range specials {
		id, ok := bytesToID[s]
		if !ok {
			return nil, fmt.Errorf("special token %q not in vocab", s)
		}
		specialIDs[s] = id
	}

	return &Tokenizer{
		revVocab:    revVocab,
		byteToToken: byteToToken,
		pairs:       newPairTable(rules, len(revVocab)),
		maxRank:     len(merges) - 1,
		specials:    append([]string(nil), specials...),
		specialIDs:  specialIDs,
	}, nil
}

// LoadFromFiles builds a tokenizer from GPT-2 style vocab.json and
// merges.txt. Declared specials missing from the loaded vocabulary are
// appended with the next free IDs.
func LoadFromFiles(vocabPath, mergesPath string, specials []string) (*Tokenizer, error) {
	vocab, err := persist.LoadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	merges, err := persist.LoadMerges(mergesPath)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(vocab))
	for _, b := range vocab {
		known[string(b)] = struct{}{}
	}
	for _, s := range specials {
		if _, ok := known[s]; !ok {
			vocab[len(vocab)] = []byte(s)
			known[s] = struct{}{}
		}
	}

	return New(vocab, merges, specials)
}

// VocabSize returns the number of token IDs.
func (t *Tokenizer) VocabSize() int {
	return len(t.revVocab)
}

// TokenBytes returns the byte sequence for a token ID.
func (t *Tokenizer) TokenBytes(id int) ([]byte, error) {
	if id < 0 || id >= len(t.revVocab) {
		return nil, fmt.Errorf("token id %d out of range [0, %d)", id, len(t.revVocab))
	}
	return t.revVocab[id], nil
}

// buildRevVocab turns the id->bytes map into a dense slice plus its
// inverse, validating density, uniqueness and non-emptiness.
func buildRevVocab(vocab map[int][]byte) ([][]byte, map[string]int, error) {
	revVocab := make([][]byte, len(vocab))
	for id, b := range vocab {
		if id < 0 || id >= len(vocab) {
			return nil, nil, fmt.Errorf("vocab not dense: id %d out of range [0, %d)", id, len(vocab))
		}
		if len(b) == 0 {
			return nil, nil, fmt.Errorf("empty byte sequence for token id %d", id)
		}
		bcopy := make([]byte, len(b))
		copy(bcopy, b)
		revVocab[id] = bcopy
	}

	for id, b := range revVocab {
		if b == nil {
			return nil, nil, fmt.Errorf("vocab not dense: missing id %d", id)
		}
	}

	bytesToID := make(map[string]int, len(revVocab))
	for id, b := range revVocab {
		k := string(b)
		if prev, exists := bytesToID[k]; exists {
			return nil, nil, fmt.Errorf("duplicate byte sequence: ids %d and %d", prev, id)
		}
		bytesToID[k] = id
	}
	return revVocab, bytesToID, nil
}

// buildByteToToken constructs the [256]int lookup table that maps a single
// raw byte value (0..255) to the token ID that represents exactly that byte.
func buildByteToToken(revVocab [][]byte) ([256]int, error) {
	var table [256]int

	filled := [256]bool{}
	for tokenID, bs := range revVocab {
		if len(bs) == 1 {
			b := bs[0]
			if filled[b] {
				return table, fmt.Errorf("duplicate single byte token for 0x%02x", b)
			}
			table[b] = tokenID
			filled[b] = true
		}
	}

	for b := 0; b < 256; b++ {
		if !filled[b] {
			return table, fmt.Errorf("no token found for raw byte %d", b)
		}
	}

	return table, nil
}
