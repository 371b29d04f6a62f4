package tokenizer

import (
	"bufio"
	"io"

	"github.com/bpetrain/internal/pretoken"
	"github.com/bpetrain/internal/utils"
)

// Encode converts text to token IDs. Declared special tokens are emitted
// as their atomic IDs (longest match first); each remaining pre-token is
// exploded to byte tokens and the recorded merges are replayed over it in
// rank order, leftmost occurrence first on a rank tie.
func (t *Tokenizer) Encode(text string) []int {
	var out []int
	for _, seg := range pretoken.SplitSpecials(text, t.specials) {
		if seg.Special {
			out = append(out, t.specialIDs[seg.Text])
			continue
		}
		for _, pre := range pretoken.Matches(seg.Text) {
			out = t.appendEncodedWord(out, pre)
		}
	}
	return out
}

// EncodeReader encodes a stream chunk by chunk, cutting at newlines the
// way the batch path cuts at pre-token boundaries. A whitespace run that
// spans a chunk boundary is tokenized as two runs; byte round-trip is
// still exact.
func (t *Tokenizer) EncodeReader(r io.Reader) ([]int, error) {
	br := bufio.NewReader(r)
	var out []int
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			out = append(out, t.Encode(line)...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// appendEncodedWord applies the recorded merges to one pre-token and
// appends the resulting token IDs to dst.
//
// The symbol sequence lives in a doubly linked list over slot indices; a
// lazy queue holds (rank, pos) candidates and per-slot versions invalidate
// entries whose slots were rewritten since push time. Popping in (rank,
// pos) order is exactly the replay rule: lowest merge index wins, leftmost
// position on a tie.
func (t *Tokenizer) appendEncodedWord(dst []int, word string) []int {
	n := len(word)
	if n == 0 {
		return dst
	}

	sc := t.acquireScratch(n)
	defer t.releaseScratch(sc)

	tokens := sc.tokens

	// convert the input to tokens, where each token currently represents a single byte
	for i := 0; i < n; i++ {
		tokens[i] = t.byteToToken[word[i]]
	}

	// doubly linked-list
	prev := sc.prev
	next := sc.next
	for i := 0; i < n; i++ {
		prev[i] = i - 1
		next[i] = i + 1
	}

	// edge elements
	prev[0] = -1
	next[n-1] = -1

	// per-slot versioning to invalidate queue entries
	liveVersion := sc.live
	for i := 0; i < n; i++ {
		liveVersion[i] = 0
	}

	q := sc.queue
	q.Reset()
	t.mergeWord(tokens, prev, next, liveVersion, q)

	for i := 0; i != -1; i = next[i] {
		dst = append(dst, tokens[i])
	}
	return dst
}

// mergeWord drains the queue, applying each still-valid candidate and
// pushing the candidates its merge creates.
func (t *Tokenizer) mergeWord(tokens, prev, next, liveVersion []int, q utils.MergeQueue) {
	pushIfMergeable := func(i int) {
		j := next[i]
		if i == -1 || j == -1 {
			// not a valid index
			return
		}

		a := tokens[i]
		b := tokens[j]

		if rank, _, ok := t.pairs.lookup(a, b); ok {
			q.Push(utils.MergeCand{
				Rank:       rank,
				Pos:        i,
				LeftToken:  a,
				RightToken: b,
				VerL:       liveVersion[i],
				VerR:       liveVersion[j],
			})
		}
	}

	// seed with all initial adjacent pairs
	for i := 0; i != -1 && next[i] != -1; i = next[i] {
		pushIfMergeable(i)
	}

	for {
		c, ok := q.Pop()
		if !ok {
			break
		}
		i := c.Pos

		j := next[i]
		if j == -1 {
			continue // no right neighbor anymore
		}

		// stale entry since at least one version did not match
		if liveVersion[i] != c.VerL || liveVersion[j] != c.VerR {
			continue
		}

		a := tokens[i]
		b := tokens[j]

		rankNow, cID, ok := t.pairs.lookup(a, b)
		if !ok {
			continue
		}

		// if this entry doesn't describe the same (a,b) pair with the same
		// rank that it did when it was pushed, skip it
		if rankNow != c.Rank || a != c.LeftToken || b != c.RightToken {
			continue
		}

		tokens[i] = cID // collapse into slot i

		nj := next[j]
		next[i] = nj
		if nj != -1 {
			prev[nj] = i
		}

		// mark the dead slot's pointers
		prev[j], next[j] = -1, -1

		liveVersion[i]++
		liveVersion[j]++ // j died; invalidate anything mentioning it

		// the merged token may pair with its left and right neighbors
		if pi := prev[i]; pi != -1 {
			pushIfMergeable(pi)
		}
		pushIfMergeable(i)
	}
}

type encodeScratch struct {
	tokens []int
	prev   []int
	next   []int
	live   []int
	queue  *utils.Heap[utils.MergeCand]
}

func (t *Tokenizer) acquireScratch(n int) *encodeScratch {
	v := t.scratchPool.Get()
	var sc *encodeScratch
	if v == nil {
		sc = &encodeScratch{queue: utils.NewMergeHeap()}
	} else {
		sc = v.(*encodeScratch)
	}
	sc.prepare(n)
	return sc
}

func (t *Tokenizer) releaseScratch(sc *encodeScratch) {
	t.scratchPool.Put(sc)
}

func (sc *encodeScratch) prepare(n int) {
	sc.tokens = ensureIntCapacity(sc.tokens, n)
	sc.prev = ensureIntCapacity(sc.prev, n)
	sc.next = ensureIntCapacity(sc.next, n)
	sc.live = ensureIntCapacity(sc.live, n)
}

func ensureIntCapacity(buf []int, n int) []int {
	if cap(buf) < n {
		return make([]int, n)
	}
	return buf[:n]
}
