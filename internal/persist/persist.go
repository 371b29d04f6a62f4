// Package persist reads and writes the GPT-2 on-disk tokenizer format:
// vocab.json maps printable alias strings to token IDs, merges.txt holds
// one "left right" alias pair per line in merge creation order.
package persist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bpetrain/internal/gpt2"
	"github.com/bpetrain/internal/trainer"
)

// SaveVocab writes vocab as a JSON object alias->ID.
func SaveVocab(path string, vocab map[int][]byte) error {
	aliased := make(map[string]int, len(vocab))
	for id, b := range vocab {
		aliased[gpt2.EncodeBytes(b)] = id
	}
	if len(aliased) != len(vocab) {
		return fmt.Errorf("vocab has duplicate byte sequences, refusing to write %s", path)
	}

	data, err := json.MarshalIndent(aliased, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vocab: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadVocab reads a vocab.json and returns the id->bytes mapping. IDs must
// be dense from 0 and byte sequences unique; anything else is a
// configuration error.
func LoadVocab(path string) (map[int][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab %s: %w", path, err)
	}

	var aliased map[string]int
	if err := json.Unmarshal(data, &aliased); err != nil {
		return nil, fmt.Errorf("vocab %s: not a JSON object of alias to id: %w", path, err)
	}

	vocab := make(map[int][]byte, len(aliased))
	for alias, id := range aliased {
		if id < 0 || id >= len(aliased) {
			return nil, fmt.Errorf("vocab %s: id %d out of range [0, %d)", path, id, len(aliased))
		}
		if _, dup := vocab[id]; dup {
			return nil, fmt.Errorf("vocab %s: duplicate id %d", path, id)
		}
		b, err := gpt2.DecodeString(alias)
		if err != nil {
			return nil, fmt.Errorf("vocab %s: token %q: %w", path, alias, err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("vocab %s: empty token for id %d", path, id)
		}
		vocab[id] = b
	}

	for id := 0; id < len(vocab); id++ {
		if _, ok := vocab[id]; !ok {
			return nil, fmt.Errorf("vocab %s: not dense, missing id %d", path, id)
		}
	}
	return vocab, nil
}

// SaveMerges writes one "left right" alias line per merge, in order.
func SaveMerges(path string, merges []trainer.Pair) error {
	var sb strings.Builder
	for _, m := range merges {
		sb.WriteString(gpt2.EncodeBytes(m.Left))
		sb.WriteByte(' ')
		sb.WriteString(gpt2.EncodeBytes(m.Right))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadMerges reads a merges.txt. Blank lines, comment lines and malformed
// lines (not exactly two fields) are skipped; an unreadable file is an
// error.
func LoadMerges(path string) ([]trainer.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read merges %s: %w", path, err)
	}
	defer f.Close()

	var merges []trainer.Pair
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}
		left, err := gpt2.DecodeString(parts[0])
		if err != nil {
			continue
		}
		right, err := gpt2.DecodeString(parts[1])
		if err != nil {
			continue
		}
		merges = append(merges, trainer.Pair{Left: left, Right: right})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read merges %s: %w", path, err)
	}
	return merges, nil
}
