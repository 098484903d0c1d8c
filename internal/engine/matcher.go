package engine

import "SearchCore/internal/scoring"

// Matcher iterates matching documents in docID order and scores the
// current one.
type Matcher interface {
	// Next advances to the next matching document. Returns false when
	// exhausted.
	Next() bool

	// DocID returns the current document. Valid only after a successful
	// Next or Advance.
	DocID() uint32

	// Advance moves to the first matching document >= target. Returns
	// false if no such document exists. A matcher already positioned at or
	// past target stays put.
	Advance(target uint32) bool

	// Cost estimates the number of remaining documents.
	Cost() int64

	// Score returns the current document's score contribution.
	Score() float32
}

// termMatcher walks a postings list and scores each document with BM25.
type termMatcher struct {
	postings []posting
	docLens  map[uint32]uint32
	scorer   *scoring.BM25Scorer
	idf      float32
	pos      int
}

func newTermMatcher(postings []posting, docLens map[uint32]uint32, scorer *scoring.BM25Scorer) *termMatcher {
	return &termMatcher{
		postings: postings,
		docLens:  docLens,
		scorer:   scorer,
		idf:      scorer.IDF(int64(len(postings))),
		pos:      -1,
	}
}

func (m *termMatcher) Next() bool {
	m.pos++
	return m.pos < len(m.postings)
}

func (m *termMatcher) DocID() uint32 {
	return m.postings[m.pos].docID
}

func (m *termMatcher) Advance(target uint32) bool {
	if m.pos >= 0 && m.pos < len(m.postings) && m.postings[m.pos].docID >= target {
		return true
	}
	for m.pos+1 < len(m.postings) {
		m.pos++
		if m.postings[m.pos].docID >= target {
			return true
		}
	}
	m.pos = len(m.postings)
	return false
}

func (m *termMatcher) Cost() int64 {
	remaining := len(m.postings) - m.pos - 1
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}

func (m *termMatcher) Score() float32 {
	p := m.postings[m.pos]
	return m.scorer.Score(p.freq, m.docLens[p.docID], m.idf)
}

func (m *termMatcher) currentPositions() []uint32 {
	return m.postings[m.pos].positions
}

func (m *termMatcher) currentFreq() uint32 {
	return m.postings[m.pos].freq
}

// matchAllMatcher matches every document with a score of zero. Matching
// everything carries no relevance signal, so it contributes nothing.
type matchAllMatcher struct {
	doc   int64
	count int64
}

func newMatchAllMatcher(docCount int) *matchAllMatcher {
	return &matchAllMatcher{doc: -1, count: int64(docCount)}
}

func (m *matchAllMatcher) Next() bool {
	m.doc++
	return m.doc < m.count
}

func (m *matchAllMatcher) DocID() uint32 { return uint32(m.doc) }

func (m *matchAllMatcher) Advance(target uint32) bool {
	if int64(target) > m.doc {
		m.doc = int64(target)
	}
	return m.doc < m.count
}

func (m *matchAllMatcher) Cost() int64 {
	remaining := m.count - m.doc - 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *matchAllMatcher) Score() float32 { return 0 }

// matchNoneMatcher matches nothing.
type matchNoneMatcher struct{}

func (matchNoneMatcher) Next() bool            { return false }
func (matchNoneMatcher) DocID() uint32         { return 0 }
func (matchNoneMatcher) Advance(uint32) bool   { return false }
func (matchNoneMatcher) Cost() int64           { return 0 }
func (matchNoneMatcher) Score() float32        { return 0 }

// boostMatcher multiplies the wrapped matcher's scores.
type boostMatcher struct {
	Matcher
	factor float32
}

func (m *boostMatcher) Score() float32 {
	return m.Matcher.Score() * m.factor
}

// constScoreMatcher discards the wrapped matcher's scores.
type constScoreMatcher struct {
	Matcher
}

func (m *constScoreMatcher) Score() float32 { return 0 }
