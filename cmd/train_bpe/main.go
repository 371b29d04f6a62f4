// Command train_bpe trains a byte-level BPE tokenizer on a text corpus and
// saves vocab.json and merges.txt in the GPT-2 on-disk format.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/bpetrain/internal/persist"
	"github.com/bpetrain/internal/trainer"
)

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

func newRootCmd() *cobra.Command {
	var (
		vocabSize    int
		specials     []string
		numProcesses int
	)

	cmd := &cobra.Command{
		Use:   "train_bpe <input_path> <output_dir>",
		Short: "Train a byte-level BPE tokenizer and save vocab/merges",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(specials) == 0 {
				specials = []string{"<|endoftext|>"}
			}
			return run(cmd, args[0], args[1], trainer.Config{
				VocabSize:     vocabSize,
				SpecialTokens: specials,
				NumWorkers:    numProcesses,
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&vocabSize, "vocab-size", 1000,
		"total vocabulary size including special tokens")
	cmd.Flags().StringArrayVar(&specials, "special-token", nil,
		"special token to keep atomic, repeatable (default <|endoftext|>)")
	cmd.Flags().IntVar(&numProcesses, "num-processes", defaultWorkers(),
		"number of workers for chunk pre-tokenization")

	return cmd
}

func run(cmd *cobra.Command, inputPath, outputDir string, cfg trainer.Config) error {
	res, err := trainer.Train(cmd.Context(), inputPath, cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	vocabPath := filepath.Join(outputDir, "vocab.json")
	mergesPath := filepath.Join(outputDir, "merges.txt")

	if err := persist.SaveVocab(vocabPath, res.Vocab); err != nil {
		os.Remove(vocabPath)
		return err
	}
	if err := persist.SaveMerges(mergesPath, res.Merges); err != nil {
		// don't leave a half-written model behind
		os.Remove(vocabPath)
		os.Remove(mergesPath)
		return err
	}

	slog.Info("saved tokenizer",
		"vocab", vocabPath,
		"merges", mergesPath,
		"vocab_size", len(res.Vocab),
		"num_merges", len(res.Merges))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}
}
