package utils

// MergeCand is one candidate application of a recorded merge inside a
// symbol sequence. Rank is the merge index (lower wins), Pos the left slot
// of the adjacency. VerL/VerR are the slot versions at push time; a popped
// candidate whose versions no longer match is stale and must be discarded.
type MergeCand struct {
	Rank       int // lower wins
	Pos        int // left index; lower wins on tie to enforce leftmost
	LeftToken  int
	RightToken int
	VerL       int
	VerR       int
}

// MergeQueue is the priority queue the merge-replay encoder drains.
// Pop returns candidates ordered by (Rank, Pos) ascending.
type MergeQueue interface {
	Push(c MergeCand)
	Pop() (MergeCand, bool)
	Len() int
	Reset()
}

// NewMergeHeap returns the heap-backed MergeQueue.
func NewMergeHeap() *Heap[MergeCand] {
	return NewHeap(func(a, b MergeCand) bool {
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Pos < b.Pos
	})
}
