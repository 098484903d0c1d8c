package engine

// booleanMatcher evaluates a boolean clause set document-at-a-time. With
// required clauses present, their conjunction leads and optional clauses
// are checked per candidate. Without required clauses the optional clauses
// drive iteration as a disjunction. The score of a matching document is the
// sum of its scoring clause contributions.
type booleanMatcher struct {
	required *conjunction
	musts    []Matcher // scoring subset of the required clauses
	optional []optClause
	prohibit []optClause
	// minShould is the effective optional-match requirement: the declared
	// threshold, raised to one when no required clause anchors matching.
	minShould int

	current    uint32
	score      float32
	positioned bool
	optStarted bool
}

type optClause struct {
	m    Matcher
	done bool
}

// newBooleanMatcher builds a matcher from pre-built clause matchers.
// required contains MUST and FILTER clauses; musts is the MUST subset.
func newBooleanMatcher(required, musts, optional, prohibited []Matcher, minimumShouldMatch int) Matcher {
	minShould := minimumShouldMatch
	if len(required) == 0 && minShould < 1 {
		minShould = 1
	}
	// Without a positive clause nothing can match; with too few optional
	// clauses the threshold is unsatisfiable.
	if len(required) == 0 && len(optional) == 0 {
		return matchNoneMatcher{}
	}
	if minShould > len(optional) {
		return matchNoneMatcher{}
	}

	m := &booleanMatcher{
		musts:     musts,
		minShould: minShould,
	}
	if len(required) > 0 {
		m.required = newConjunction(required)
	}
	for _, o := range optional {
		m.optional = append(m.optional, optClause{m: o})
	}
	for _, p := range prohibited {
		m.prohibit = append(m.prohibit, optClause{m: p})
	}
	return m
}

func (m *booleanMatcher) Next() bool {
	if m.required != nil {
		for m.required.Next() {
			if m.evalCandidate(m.required.DocID()) {
				return true
			}
		}
		return false
	}
	for m.nextOptionalCandidate() {
		if m.optCountAndScore() >= m.minShould && !m.prohibitedAt(m.current) {
			m.positioned = true
			return true
		}
	}
	return false
}

func (m *booleanMatcher) DocID() uint32 { return m.current }

func (m *booleanMatcher) Advance(target uint32) bool {
	if m.positioned && m.current >= target {
		return true
	}
	for m.Next() {
		if m.current >= target {
			return true
		}
	}
	return false
}

func (m *booleanMatcher) Cost() int64 {
	if m.required != nil {
		return m.required.Cost()
	}
	var total int64
	for _, o := range m.optional {
		total += o.m.Cost()
	}
	return total
}

func (m *booleanMatcher) Score() float32 { return m.score }

// evalCandidate checks threshold and prohibition at a required-led
// candidate and computes its score.
func (m *booleanMatcher) evalCandidate(doc uint32) bool {
	count := 0
	var optScore float32
	for i := range m.optional {
		o := &m.optional[i]
		if o.done {
			continue
		}
		if !o.m.Advance(doc) {
			o.done = true
			continue
		}
		if o.m.DocID() == doc {
			count++
			optScore += o.m.Score()
		}
	}
	if count < m.minShould || m.prohibitedAt(doc) {
		return false
	}

	m.current = doc
	m.score = optScore
	for _, must := range m.musts {
		m.score += must.Score()
	}
	m.positioned = true
	return true
}

// nextOptionalCandidate merges the optional matchers in docID order. It
// leaves every matcher positioned at the candidate consumed, so
// optCountAndScore can read them before the next merge step.
func (m *booleanMatcher) nextOptionalCandidate() bool {
	if !m.optStarted {
		m.optStarted = true
		for i := range m.optional {
			o := &m.optional[i]
			if !o.m.Next() {
				o.done = true
			}
		}
	} else {
		// Consume matchers sitting on the previous candidate.
		for i := range m.optional {
			o := &m.optional[i]
			if o.done || o.m.DocID() != m.current {
				continue
			}
			if !o.m.Next() {
				o.done = true
			}
		}
	}

	found := false
	var min uint32
	for i := range m.optional {
		o := &m.optional[i]
		if o.done {
			continue
		}
		if !found || o.m.DocID() < min {
			min = o.m.DocID()
			found = true
		}
	}
	if !found {
		return false
	}
	m.current = min
	return true
}

func (m *booleanMatcher) optCountAndScore() int {
	count := 0
	m.score = 0
	for i := range m.optional {
		o := &m.optional[i]
		if o.done || o.m.DocID() != m.current {
			continue
		}
		count++
		m.score += o.m.Score()
	}
	return count
}

func (m *booleanMatcher) prohibitedAt(doc uint32) bool {
	for i := range m.prohibit {
		p := &m.prohibit[i]
		if p.done {
			continue
		}
		if !p.m.Advance(doc) {
			p.done = true
			continue
		}
		if p.m.DocID() == doc {
			return true
		}
	}
	return false
}
