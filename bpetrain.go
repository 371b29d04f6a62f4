// Package bpetrain trains byte-level BPE tokenizers and applies them.
//
// Training turns a text corpus into a vocabulary (token ID -> bytes) and
// an ordered merge list; the tokenizer replays those merges to encode
// arbitrary text and decode token IDs back to text.
package bpetrain

import (
	"context"

	"github.com/bpetrain/internal/tokenizer"
	"github.com/bpetrain/internal/trainer"
)

// Config holds training parameters. See trainer.Config.
type Config = trainer.Config

// Result is a trained model: vocabulary plus ordered merges.
type Result = trainer.Result

// Pair is one recorded merge.
type Pair = trainer.Pair

// Tokenizer applies a trained model to text.
type Tokenizer = tokenizer.Tokenizer

// Train trains a BPE tokenizer on the file at inputPath.
func Train(ctx context.Context, inputPath string, cfg Config) (*Result, error) {
	return trainer.Train(ctx, inputPath, cfg)
}

// TrainFromCounts trains over an already-aggregated pre-token frequency
// map; keys are raw pre-token bytes held as string.
func TrainFromCounts(counts map[string]int, cfg Config) (*Result, error) {
	return trainer.TrainFromCounts(counts, cfg)
}

// NewTokenizer builds a tokenizer from an in-memory model.
func NewTokenizer(vocab map[int][]byte, merges []Pair, specials []string) (*Tokenizer, error) {
	return tokenizer.New(vocab, merges, specials)
}

// LoadTokenizer builds a tokenizer from GPT-2 style vocab.json and
// merges.txt files.
func LoadTokenizer(vocabPath, mergesPath string, specials []string) (*Tokenizer, error) {
	return tokenizer.LoadFromFiles(vocabPath, mergesPath, specials)
}
