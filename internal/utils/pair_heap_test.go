package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(count int, left, right string) PairCand {
	return PairCand{
		Count:      count,
		LeftBytes:  []byte(left),
		RightBytes: []byte(right),
	}
}

func TestPairHeapOrdersByCountDesc(t *testing.T) {
	h := NewPairHeap()
	h.Push(cand(1, "a", "b"))
	h.Push(cand(5, "c", "d"))
	h.Push(cand(3, "e", "f"))

	counts := []int{}
	for {
		c, ok := h.Pop()
		if !ok {
			break
		}
		counts = append(counts, c.Count)
	}
	assert.Equal(t, []int{5, 3, 1}, counts)
}

func TestPairHeapTieBreakGreatestPair(t *testing.T) {
	h := NewPairHeap()
	h.Push(cand(2, "a", "b"))
	h.Push(cand(2, "b", "a"))
	h.Push(cand(2, "a", "a"))

	c, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", string(c.LeftBytes))

	c, ok = h.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", string(c.LeftBytes))
	assert.Equal(t, "b", string(c.RightBytes))
}

func TestPairHeapLongerLeftWinsOnPrefixTie(t *testing.T) {
	h := NewPairHeap()
	h.Push(cand(2, "a", "x"))
	h.Push(cand(2, "aa", "x"))

	c, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, "aa", string(c.LeftBytes), "aa compares greater than a")
}

func TestPairHeapEmpty(t *testing.T) {
	h := NewPairHeap()
	_, ok := h.Pop()
	assert.False(t, ok)
	assert.Zero(t, h.Len())
}

func TestMergeQueuesPopInRankPosOrder(t *testing.T) {
	for name, q := range map[string]MergeQueue{
		"heap":   NewMergeHeap(),
		"bucket": NewBucketQueue(4),
	} {
		t.Run(name, func(t *testing.T) {
			q.Push(MergeCand{Rank: 2, Pos: 0})
			q.Push(MergeCand{Rank: 0, Pos: 7})
			q.Push(MergeCand{Rank: 0, Pos: 3})
			q.Push(MergeCand{Rank: 1, Pos: 1})

			var got [][2]int
			for {
				c, ok := q.Pop()
				if !ok {
					break
				}
				got = append(got, [2]int{c.Rank, c.Pos})
			}
			assert.Equal(t, [][2]int{{0, 3}, {0, 7}, {1, 1}, {2, 0}}, got)

			// lower ranks pushed after higher ones were popped must still
			// surface first
			q.Reset()
			q.Push(MergeCand{Rank: 3, Pos: 0})
			c, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, 3, c.Rank)
			q.Push(MergeCand{Rank: 3, Pos: 2})
			q.Push(MergeCand{Rank: 1, Pos: 5})
			c, ok = q.Pop()
			require.True(t, ok)
			assert.Equal(t, 1, c.Rank)
		})
	}
}
