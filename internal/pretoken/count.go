package pretoken

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// CountFile pre-tokenizes the file at path and returns the aggregated
// pre-token frequency map. The file is split on delim into at most workers
// chunks which are counted concurrently; each worker opens its own handle
// and reads only its byte range. Declared specials are kept atomic: a
// special occurring in the corpus is counted as a single pre-token instead
// of being cut up by the pattern.
//
// Summing per-chunk maps is commutative, so worker completion order does
// not matter.
func CountFile(ctx context.Context, path string, workers int, delim []byte, specials []string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	boundaries, err := FindChunkBoundaries(f, workers, delim)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", path, err)
	}

	type span struct{ start, end int64 }
	var spans []span
	for i := 0; i+1 < len(boundaries); i++ {
		if boundaries[i+1] > boundaries[i] {
			spans = append(spans, span{boundaries[i], boundaries[i+1]})
		}
	}

	results := make([]map[string]int, len(spans))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sp := range spans {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			counts, err := countRange(path, sp.start, sp.end, specials)
			if err != nil {
				return err
			}
			results[i] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := make(map[string]int)
	for _, counts := range results {
		for pre, n := range counts {
			total[pre] += n
		}
	}
	return total, nil
}

// countRange opens its own read-only handle, reads [start, end) and counts
// pre-tokens in the decoded text.
func countRange(path string, start, end int64, specials []string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, end-start)
	n, err := f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s [%d,%d): %w", path, start, end, err)
	}
	if n != len(buf) {
		return nil, fmt.Errorf("read %s [%d,%d): short read of %d bytes", path, start, end, n)
	}

	text := DecodeReplacing(buf)
	counts := make(map[string]int)
	for _, seg := range SplitSpecials(text, specials) {
		if seg.Special {
			counts[seg.Text]++
			continue
		}
		CountInto(counts, seg.Text)
	}
	return counts, nil
}
