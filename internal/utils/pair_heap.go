package utils

import "bytes"

// PairCand is one heap entry for the training loop: a symbol pair together
// with the global weighted count it had when pushed. Entries are never
// updated in place; a fresh entry is pushed whenever a pair's count changes
// and stale entries are discarded on pop by comparing Count against the
// live count.
//
// LeftBytes/RightBytes are the symbol byte sequences; they are captured at
// push time so ordering needs no access to the vocabulary. Symbols are
// immutable, so aliasing the vocab slices is safe.
type PairCand struct {
	Count      int
	Left       int
	Right      int
	LeftBytes  []byte
	RightBytes []byte
}

// NewPairHeap returns the training loop's lazy priority queue: highest
// Count pops first, ties go to the lexicographically greatest (LeftBytes,
// RightBytes). The tie-break lives in the heap ordering itself because
// several equally-best pairs may be valid at the same time.
func NewPairHeap() *Heap[PairCand] {
	return NewHeap(func(a, b PairCand) bool {
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if c := bytes.Compare(a.LeftBytes, b.LeftBytes); c != 0 {
			return c > 0
		}
		return bytes.Compare(a.RightBytes, b.RightBytes) > 0
	})
}
