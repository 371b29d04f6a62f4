// Command inspect_vocab prints the longest tokens in a vocab.json.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/bpetrain/internal/gpt2"
)

type tokenEntry struct {
	Alias string
	ID    int
}

func newRootCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "inspect_vocab <vocab_path>",
		Short: "Print the longest tokens in a vocab.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadTokenEntries(args[0])
			if err != nil {
				return err
			}
			for _, line := range report(entries, topK) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&topK, "top-k", 10, "how many tokens to print")
	return cmd
}

// loadTokenEntries accepts the common GPT-2 shape (alias -> id) and falls
// back to the inverted one (stringified id -> alias).
func loadTokenEntries(path string) ([]tokenEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("vocab %s: expected a JSON object: %w", path, err)
	}

	entries := make([]tokenEntry, 0, len(raw))

	aliasToID := true
	for _, v := range raw {
		var id int
		if err := json.Unmarshal(v, &id); err != nil {
			aliasToID = false
		}
		break
	}

	if aliasToID {
		for alias, v := range raw {
			var id int
			if err := json.Unmarshal(v, &id); err != nil {
				return nil, fmt.Errorf("vocab %s: token %q has non-integer id", path, alias)
			}
			entries = append(entries, tokenEntry{Alias: alias, ID: id})
		}
		return entries, nil
	}

	for key, v := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("vocab %s: detected id-to-token format, but key %q is not an integer", path, key)
		}
		var alias string
		if err := json.Unmarshal(v, &alias); err != nil {
			return nil, fmt.Errorf("vocab %s: id %d has non-string token", path, id)
		}
		entries = append(entries, tokenEntry{Alias: alias, ID: id})
	}
	return entries, nil
}

// report orders entries by alias length, then alias, then ID, all
// descending, and formats the top k. Length is counted in runes: one alias
// rune per token byte, so this is the token's byte length even though
// aliases outside 33..126 take two bytes of UTF-8.
func report(entries []tokenEntry, k int) []string {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if la, lb := utf8.RuneCountInString(a.Alias), utf8.RuneCountInString(b.Alias); la != lb {
			return la > lb
		}
		if a.Alias != b.Alias {
			return a.Alias > b.Alias
		}
		return a.ID > b.ID
	})

	if k > len(entries) {
		k = len(entries)
	}

	lines := make([]string, 0, k)
	for rank, e := range entries[:k] {
		display := e.Alias
		if decoded, err := gpt2.DecodeString(e.Alias); err == nil {
			display = string(decoded)
		}
		lines = append(lines, fmt.Sprintf("%2d. len=%4d id=%6d token=%q", rank+1, utf8.RuneCountInString(e.Alias), e.ID, display))
	}
	return lines
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("inspect failed", "error", err)
		os.Exit(1)
	}
}
