package pretoken

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

const probeBlockSize = 4096

// FindChunkBoundaries returns sorted byte offsets b0=0 <= ... <= bN = file
// size that split f into at most desired chunks. Every interior boundary
// sits at the start of an occurrence of delim, found by probing forward
// from the even split position; if no occurrence exists further along, the
// boundary collapses to the file end. Duplicate boundaries are removed, so
// fewer than desired chunks may come back.
func FindChunkBoundaries(f *os.File, desired int, delim []byte) ([]int64, error) {
	if len(delim) == 0 {
		return nil, errors.New("chunk delimiter must not be empty")
	}
	if desired < 1 {
		desired = 1
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat chunk input: %w", err)
	}
	size := info.Size()
	if size == 0 {
		return []int64{0}, nil
	}

	chunkSize := size / int64(desired)
	if chunkSize < 1 {
		chunkSize = 1
	}

	boundaries := make([]int64, 0, desired+1)
	boundaries = append(boundaries, 0)

	// Probe forward from each even split until the delimiter is seen. The
	// block overlap of len(delim)-1 keeps a delimiter that straddles two
	// blocks findable.
	buf := make([]byte, probeBlockSize+len(delim)-1)
	for i := 1; i < desired; i++ {
		pos := int64(i) * chunkSize
		found := size
		for pos < size {
			n, err := f.ReadAt(buf, pos)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("probe chunk boundary at offset %d: %w", pos, err)
			}
			if idx := bytes.Index(buf[:n], delim); idx >= 0 {
				found = pos + int64(idx)
				break
			}
			if err == io.EOF {
				break
			}
			pos += probeBlockSize
		}
		boundaries = append(boundaries, found)
	}
	boundaries = append(boundaries, size)

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	out := boundaries[:1]
	for _, b := range boundaries[1:] {
		if b != out[len(out)-1] {
			out = append(out, b)
		}
	}
	return out, nil
}
