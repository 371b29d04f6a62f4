package bpetrain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainEncodeDecodeEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("aaabdaaabac"), 0o644))

	res, err := Train(context.Background(), path, Config{VocabSize: 259})
	require.NoError(t, err)
	require.Len(t, res.Merges, 3)
	assert.Equal(t, []byte("aaab"), res.Vocab[258])

	tok, err := NewTokenizer(res.Vocab, res.Merges, nil)
	require.NoError(t, err)

	ids := tok.Encode("aaabac")
	assert.Equal(t, []int{258, 97, 99}, ids)

	round, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, "aaabac", round)
}

func TestTrainFromCountsMatchesFileTraining(t *testing.T) {
	content := "the cat sat on the mat"
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fromFile, err := Train(context.Background(), path, Config{VocabSize: 270})
	require.NoError(t, err)

	counts := map[string]int{
		"the": 1, " cat": 1, " sat": 1, " on": 1, " the": 1, " mat": 1,
	}
	fromCounts, err := TrainFromCounts(counts, Config{VocabSize: 270})
	require.NoError(t, err)

	assert.Equal(t, fromFile.Merges, fromCounts.Merges)
	assert.Equal(t, fromFile.Vocab, fromCounts.Vocab)
}
