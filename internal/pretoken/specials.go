package pretoken

import (
	"regexp"
	"sort"
	"strings"
)

// Segment is a run of input text: either ordinary text to be pre-tokenized
// or exactly one special token to be kept atomic.
type Segment struct {
	Text    string
	Special bool
}

// SplitSpecials cuts text into ordinary and special segments. The
// alternation is ordered by descending token length so that overlapping
// specials resolve longest-first (e.g. a doubled end-of-text token beats a
// single one). With no specials the whole text comes back as one ordinary
// segment.
func SplitSpecials(text string, specials []string) []Segment {
	if len(specials) == 0 {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}

	re := specialRe(specials)

	var out []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			out = append(out, Segment{Text: text[last:loc[0]]})
		}
		out = append(out, Segment{Text: text[loc[0]:loc[1]], Special: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}

func specialRe(specials []string) *regexp.Regexp {
	ordered := make([]string, len(specials))
	copy(ordered, specials)
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	quoted := make([]string, len(ordered))
	for i, s := range ordered {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}
