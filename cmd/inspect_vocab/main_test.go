package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	return path
}

func TestLoadTokenEntriesAliasToID(t *testing.T) {
	path := writeVocab(t, `{"a": 0, "bb": 1, "ccc": 2}`)
	entries, err := loadTokenEntries(path)
	if err != nil {
		t.Fatalf("loadTokenEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
}

func TestLoadTokenEntriesIDToToken(t *testing.T) {
	path := writeVocab(t, `{"0": "a", "1": "bb"}`)
	entries, err := loadTokenEntries(path)
	if err != nil {
		t.Fatalf("loadTokenEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestLoadTokenEntriesBadShapes(t *testing.T) {
	for name, content := range map[string]string{
		"array":       `[1, 2]`,
		"mixed":       `{"0": true}`,
		"non-int key": `{"x": "y"}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeVocab(t, content)
			if _, err := loadTokenEntries(path); err == nil {
				t.Fatalf("expected error for %s", content)
			}
		})
	}
}

func TestReportOrdering(t *testing.T) {
	entries := []tokenEntry{
		{Alias: "aa", ID: 5},
		{Alias: "zzzz", ID: 1},
		{Alias: "ab", ID: 9},
		{Alias: "aa", ID: 7},
	}
	lines := report(entries, 10)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	// longest first; same length by alias descending; same alias by ID descending
	wantOrder := []string{"zzzz", "ab", "aa", "aa"}
	for i, want := range wantOrder {
		if !strings.Contains(lines[i], "token="+`"`+want+`"`) {
			t.Fatalf("line %d = %q, want token %q", i, lines[i], want)
		}
	}
	if !strings.Contains(lines[2], "id=     7") {
		t.Fatalf("id tie-break wrong: %q", lines[2])
	}
}

func TestReportLengthCountsRunesNotBytes(t *testing.T) {
	// "Ġab" is 4 bytes of UTF-8 but a 3-byte token (3 alias runes); it
	// must rank below the 4-rune "abcd" and print len=3
	entries := []tokenEntry{
		{Alias: "Ġab", ID: 300},
		{Alias: "abcd", ID: 301},
	}
	lines := report(entries, 10)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `token="abcd"`) {
		t.Fatalf("expected abcd first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "len=   3") {
		t.Fatalf("expected rune-counted len=3 for Ġab, got %q", lines[1])
	}
	if !strings.Contains(lines[1], `token=" ab"`) {
		t.Fatalf("expected alias-decoded token, got %q", lines[1])
	}
}

func TestReportTopKClamp(t *testing.T) {
	lines := report([]tokenEntry{{Alias: "a", ID: 0}}, 5)
	if len(lines) != 1 {
		t.Fatalf("expected clamp to 1, got %d", len(lines))
	}
}
