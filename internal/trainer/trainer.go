// Package trainer implements byte-level BPE training: given a weighted
// pre-token multiset it repeatedly merges the highest-weighted adjacent
// symbol pair, maintaining a pair index so each step only touches the
// pre-tokens that actually contain the selected pair.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"unicode/utf8"

	"github.com/bpetrain/internal/pretoken"
)

// ChunkDelimiter is the literal byte string used to find safe split points
// for parallel pre-tokenization. Its presence or absence in the corpus only
// affects parallelism granularity, never training output.
const ChunkDelimiter = "<|endoftext|>"

// ErrInvalidConfig marks configuration errors: training aborts before any
// side effect.
var ErrInvalidConfig = errors.New("invalid training configuration")

// Config holds the training parameters.
type Config struct {
	// VocabSize is the total target vocabulary size, including the 256
	// single-byte tokens and all special tokens.
	VocabSize int

	// SpecialTokens are kept atomic: a pre-token equal to one of these
	// never merges internally and receives its ID right after the byte
	// tokens, in declaration order.
	SpecialTokens []string

	// NumWorkers bounds pre-tokenization parallelism. Zero selects
	// min(8, GOMAXPROCS).
	NumWorkers int
}

func (c Config) validate() error {
	floor := 256 + len(c.SpecialTokens)
	if c.VocabSize < floor {
		return fmt.Errorf("%w: vocab size %d below floor %d (256 bytes + %d specials)",
			ErrInvalidConfig, c.VocabSize, floor, len(c.SpecialTokens))
	}
	seen := make(map[string]struct{}, len(c.SpecialTokens))
	for _, s := range c.SpecialTokens {
		if s == "" {
			return fmt.Errorf("%w: empty special token", ErrInvalidConfig)
		}
		if !utf8.ValidString(s) {
			return fmt.Errorf("%w: special token %q is not valid utf-8", ErrInvalidConfig, s)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate special token %q", ErrInvalidConfig, s)
		}
		seen[s] = struct{}{}
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("%w: worker count %d must be positive", ErrInvalidConfig, c.NumWorkers)
	}
	return nil
}

func (c Config) workers() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	n := runtime.GOMAXPROCS(0)
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Pair is one recorded merge: Left and Right are the symbol byte sequences
// that were adjacent when the merge was learned.
type Pair struct {
	Left  []byte
	Right []byte
}

// Result is a trained tokenizer model: the vocabulary (token ID to bytes,
// dense from 0) and the merges in creation order.
type Result struct {
	Vocab  map[int][]byte
	Merges []Pair
}

// Train pre-tokenizes the file at inputPath in parallel and runs the merge
// loop until the vocabulary reaches cfg.VocabSize or no pair remains.
func Train(ctx context.Context, inputPath string, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	counts, err := pretoken.CountFile(ctx, inputPath, cfg.workers(), []byte(ChunkDelimiter), cfg.SpecialTokens)
	if err != nil {
		return nil, err
	}

	return trainFromCounts(counts, cfg), nil
}

// TrainFromCounts runs the merge loop over an already-aggregated pre-token
// frequency map. Keys are raw pre-token bytes held as string.
func TrainFromCounts(counts map[string]int, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return trainFromCounts(counts, cfg), nil
}

func trainFromCounts(counts map[string]int, cfg Config) *Result {
	e := newEngine(counts, cfg.SpecialTokens)
	for len(e.vocab) < cfg.VocabSize {
		best, ok := e.popBest()
		if !ok {
			break
		}
		e.applyMerge(best)
	}

	merges := make([]Pair, len(e.merges))
	for i, m := range e.merges {
		merges[i] = Pair{Left: e.vocab[m[0]], Right: e.vocab[m[1]]}
	}
	return &Result{Vocab: e.vocab, Merges: merges}
}
