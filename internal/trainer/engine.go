package trainer

import (
	"fmt"

	"github.com/bpetrain/internal/utils"
)

// word is one live pre-token: its current symbol sequence and its corpus
// weight. Words are keyed in the engine by their byte concatenation, which
// merging never changes, so a word's key is stable for the whole run and
// two distinct live words can never rewrite into each other.
type word struct {
	syms   []int
	weight int
}

// engine owns the merge-loop state. The three index structures satisfy, at
// every iteration boundary:
//
//	pairCounts[p] == sum over w in pairMembers[p] of wordPairs[w][p] * words[w].weight
//
// and pairMembers[p] is non-empty exactly when pairCounts[p] > 0. Frozen
// words (special tokens) are absent from all three.
type engine struct {
	vocab  map[int][]byte
	nextID int
	merges [][2]int

	words  map[string]*word
	frozen map[string]struct{}

	pairCounts  map[[2]int]int
	pairMembers map[[2]int]map[string]struct{}
	wordPairs   map[string]map[[2]int]int

	heap *utils.Heap[utils.PairCand]
}

func newEngine(counts map[string]int, specials []string) *engine {
	e := &engine{
		vocab:       make(map[int][]byte, 256+len(specials)),
		words:       make(map[string]*word, len(counts)),
		frozen:      make(map[string]struct{}, len(specials)),
		pairCounts:  make(map[[2]int]int),
		pairMembers: make(map[[2]int]map[string]struct{}),
		wordPairs:   make(map[string]map[[2]int]int, len(counts)),
		heap:        utils.NewPairHeap(),
	}

	for i := 0; i < 256; i++ {
		e.vocab[i] = []byte{byte(i)}
	}
	e.nextID = 256
	for _, s := range specials {
		e.vocab[e.nextID] = []byte(s)
		e.nextID++
		e.frozen[s] = struct{}{}
	}

	for pre, weight := range counts {
		if weight <= 0 {
			continue
		}
		syms := make([]int, len(pre))
		for i := 0; i < len(pre); i++ {
			syms[i] = int(pre[i])
		}
		e.words[pre] = &word{syms: syms, weight: weight}

		if _, isFrozen := e.frozen[pre]; isFrozen || len(syms) < 2 {
			continue
		}
		occ := pairOccurrences(syms)
		e.wordPairs[pre] = occ
		for p, n := range occ {
			e.pairCounts[p] += n * weight
			e.addMember(p, pre)
		}
	}

	for p, count := range e.pairCounts {
		e.pushPair(p, count)
	}
	return e
}

// popBest drains stale heap entries until a pair whose stored count still
// matches its live count surfaces. The heap ordering already encodes the
// selection rule: highest count first, then lexicographically greatest
// pair.
func (e *engine) popBest() ([2]int, bool) {
	for {
		cand, ok := e.heap.Pop()
		if !ok {
			return [2]int{}, false
		}
		p := [2]int{cand.Left, cand.Right}
		current, live := e.pairCounts[p]
		if !live || current <= 0 {
			continue
		}
		if current != cand.Count {
			continue
		}
		return p, true
	}
}

// applyMerge records p as the next merge, mints the merged symbol, and
// rewrites every word that contains p, updating the pair index by local
// deltas only.
func (e *engine) applyMerge(p [2]int) {
	newID := e.nextID
	e.nextID++

	left, right := e.vocab[p[0]], e.vocab[p[1]]
	merged := make([]byte, 0, len(left)+len(right))
	merged = append(merged, left...)
	merged = append(merged, right...)
	e.vocab[newID] = merged
	e.merges = append(e.merges, p)

	// snapshot: the member set mutates while we rewrite
	members := make([]string, 0, len(e.pairMembers[p]))
	for key := range e.pairMembers[p] {
		members = append(members, key)
	}

	changed := make(map[[2]int]struct{})

	for _, key := range members {
		w := e.words[key]

		for q, occ := range e.wordPairs[key] {
			e.subtractCount(q, occ*w.weight)
			changed[q] = struct{}{}
			e.dropMember(q, key)
		}

		w.syms = mergeSymbols(w.syms, p, newID)

		occ := pairOccurrences(w.syms)
		e.wordPairs[key] = occ
		for q, n := range occ {
			e.pairCounts[q] += n * w.weight
			e.addMember(q, key)
			changed[q] = struct{}{}
		}
	}

	for q := range changed {
		if count := e.pairCounts[q]; count > 0 {
			e.pushPair(q, count)
		}
	}
}

func (e *engine) subtractCount(q [2]int, delta int) {
	updated := e.pairCounts[q] - delta
	switch {
	case updated > 0:
		e.pairCounts[q] = updated
	case updated == 0:
		delete(e.pairCounts, q)
	default:
		panic(fmt.Sprintf("bpe pair index drift: count for pair %v fell to %d", q, updated))
	}
}

func (e *engine) addMember(p [2]int, key string) {
	m := e.pairMembers[p]
	if m == nil {
		m = make(map[string]struct{})
		e.pairMembers[p] = m
	}
	m[key] = struct{}{}
}

func (e *engine) dropMember(p [2]int, key string) {
	m := e.pairMembers[p]
	if m == nil {
		return
	}
	delete(m, key)
	if len(m) == 0 {
		delete(e.pairMembers, p)
	}
}

func (e *engine) pushPair(p [2]int, count int) {
	e.heap.Push(utils.PairCand{
		Count:      count,
		Left:       p[0],
		Right:      p[1],
		LeftBytes:  e.vocab[p[0]],
		RightBytes: e.vocab[p[1]],
	})
}

// pairOccurrences counts adjacent pairs inside one symbol sequence.
func pairOccurrences(syms []int) map[[2]int]int {
	occ := make(map[[2]int]int, len(syms))
	for i := 0; i+1 < len(syms); i++ {
		occ[[2]int{syms[i], syms[i+1]}]++
	}
	return occ
}

// mergeSymbols rewrites syms by a left-to-right non-overlapping pass
// replacing every exact (left, right) adjacency with merged. A just-emitted
// merged symbol is never re-examined, so x,x,x with merge (x,x) yields
// [xx, x].
func mergeSymbols(syms []int, p [2]int, merged int) []int {
	out := make([]int, 0, len(syms))
	i := 0
	for i < len(syms) {
		if i+1 < len(syms) && syms[i] == p[0] && syms[i+1] == p[1] {
			out = append(out, merged)
			i += 2
		} else {
			out = append(out, syms[i])
			i++
		}
	}
	return out
}
