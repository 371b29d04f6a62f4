// Package pretoken splits raw text into the lexical atoms BPE training and
// encoding operate on: the GPT-2 pre-token regex, safe chunk boundaries for
// parallel counting, and special-token segmentation.
package pretoken

import (
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Pattern is the fixed GPT-2 pre-tokenization pattern. The trailing
// alternatives contain a negative lookahead, which is why this is a
// regexp2 pattern and not a stdlib one.
const Pattern = `'(?:[sdmt]|ll|ve|re)| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

var preTokenRe = regexp2.MustCompile(Pattern, regexp2.None)

// Matches returns every non-overlapping leftmost match of Pattern over
// text, in order. Concatenating the result reproduces text exactly.
func Matches(text string) []string {
	var out []string
	m, _ := preTokenRe.FindStringMatch(text)
	if m == nil {
		return nil
	}
	// regexp2 matches over runes, where every invalid UTF-8 byte is one
	// U+FFFD; slice the original text by byte offset so such bytes survive
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	for m != nil {
		out = append(out, text[offsets[m.Index]:offsets[m.Index+m.Length]])
		m, _ = preTokenRe.FindNextMatch(m)
	}
	return out
}

// Count aggregates match frequencies over text. Keys are the UTF-8 bytes of
// each match, held as string.
func Count(text string) map[string]int {
	counts := make(map[string]int)
	CountInto(counts, text)
	return counts
}

// CountInto adds match frequencies over text into counts.
func CountInto(counts map[string]int, text string) {
	m, _ := preTokenRe.FindStringMatch(text)
	for m != nil {
		counts[m.String()]++
		m, _ = preTokenRe.FindNextMatch(m)
	}
}

// DecodeReplacing decodes b as UTF-8, replacing every invalid byte with
// U+FFFD.
func DecodeReplacing(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.WriteRune(r)
		}
		b = b[size:]
	}
	return sb.String()
}
