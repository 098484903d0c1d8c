package engine

import "SearchCore/internal/scoring"

// phraseMatcher matches documents where the phrase terms appear in order.
// With zero slop the terms must be adjacent; otherwise each term may lag
// the previous one by up to slop extra positions. The phrase scores like a
// pseudo-term: its frequency is the occurrence count and its IDF is the sum
// of the member terms' IDFs.
type phraseMatcher struct {
	children []*termMatcher
	conj     *conjunction
	slop     uint32
	docLens  map[uint32]uint32
	scorer   *scoring.BM25Scorer
	idf      float32
	freq     uint32
}

func newPhraseMatcher(children []*termMatcher, slop uint32, docLens map[uint32]uint32, scorer *scoring.BM25Scorer) *phraseMatcher {
	matchers := make([]Matcher, len(children))
	var idf float32
	for i, c := range children {
		matchers[i] = c
		idf += c.idf
	}
	return &phraseMatcher{
		children: children,
		conj:     newConjunction(matchers),
		slop:     slop,
		docLens:  docLens,
		scorer:   scorer,
		idf:      idf,
	}
}

func (m *phraseMatcher) Next() bool {
	for m.conj.Next() {
		if freq := m.phraseFreq(); freq > 0 {
			m.freq = freq
			return true
		}
	}
	return false
}

func (m *phraseMatcher) DocID() uint32 {
	return m.conj.DocID()
}

func (m *phraseMatcher) Advance(target uint32) bool {
	if !m.conj.Advance(target) {
		return false
	}
	if freq := m.phraseFreq(); freq > 0 {
		m.freq = freq
		return true
	}
	return m.Next()
}

func (m *phraseMatcher) Cost() int64 {
	return m.conj.Cost()
}

func (m *phraseMatcher) Score() float32 {
	return m.scorer.Score(m.freq, m.docLens[m.DocID()], m.idf)
}

// phraseFreq counts phrase occurrences in the aligned document. Each start
// position of the first term is extended greedily: the next term must occur
// within slop positions of where adjacency would put it.
func (m *phraseMatcher) phraseFreq() uint32 {
	var freq uint32
	for _, start := range m.children[0].currentPositions() {
		pos := start
		ok := true
		for _, child := range m.children[1:] {
			next, found := nextWithin(child.currentPositions(), pos+1, pos+1+m.slop)
			if !found {
				ok = false
				break
			}
			pos = next
		}
		if ok {
			freq++
		}
	}
	return freq
}

// nextWithin returns the smallest position in [lo, hi], if any. Positions
// are sorted, so a binary search would also work; lists are short enough
// that a scan is fine.
func nextWithin(positions []uint32, lo, hi uint32) (uint32, bool) {
	for _, p := range positions {
		if p > hi {
			break
		}
		if p >= lo {
			return p, true
		}
	}
	return 0, false
}
