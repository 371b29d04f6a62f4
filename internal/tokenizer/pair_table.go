package tokenizer

// pairRule is what a recorded merge means for the encoder: the rank of the
// merge (its index in the recorded list) and the token the pair collapses
// into.
type pairRule struct {
	rank  int32
	token int32
}

// pairTable resolves an adjacent token pair to its pairRule. Pairs whose
// IDs both fall in the dense low region hit a flat 2D table; the rest go
// through a map. Most adjacencies during replay are between low IDs, so
// the flat table absorbs the hot lookups.
type pairTable struct {
	fast     [][]pairRule
	fastSize int
	fallback map[[2]int]pairRule
}

const noRule = int32(-1)

func newPairTable(rules map[[2]int]pairRule, vocabSize int) *pairTable {
	fastSize := 2048
	if vocabSize < fastSize {
		fastSize = vocabSize
	}

	fast := make([][]pairRule, fastSize)
	for i := range fast {
		fast[i] = make([]pairRule, fastSize)
		for j := range fast[i] {
			fast[i][j].rank = noRule
		}
	}

	fallback := make(map[[2]int]pairRule)
	for pair, rule := range rules {
		if pair[0] < fastSize && pair[1] < fastSize {
			fast[pair[0]][pair[1]] = rule
		} else {
			fallback[pair] = rule
		}
	}

	return &pairTable{
		fast:     fast,
		fastSize: fastSize,
		fallback: fallback,
	}
}

// lookup returns the merge rank and resulting token for the pair (a, b).
func (pt *pairTable) lookup(a, b int) (rank, token int, ok bool) {
	if a >= 0 && a < pt.fastSize && b >= 0 && b < pt.fastSize {
		rule := pt.fast[a][b]
		if rule.rank == noRule {
			return 0, 0, false
		}
		return int(rule.rank), int(rule.token), true
	}

	rule, ok := pt.fallback[[2]int{a, b}]
	if !ok {
		return 0, 0, false
	}
	return int(rule.rank), int(rule.token), true
}
