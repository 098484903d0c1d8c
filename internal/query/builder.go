package query

// BooleanBuilder accumulates clauses and a minimum-should-match threshold
// and produces an immutable BooleanQuery. The rewrite engine only ever sees
// finalized values; incremental state stays inside the builder.
type BooleanBuilder struct {
	clauses            []BooleanClause
	minimumShouldMatch int
}

// NewBooleanBuilder creates an empty builder.
func NewBooleanBuilder() *BooleanBuilder {
	return &BooleanBuilder{}
}

// Add appends a clause. Nil queries are ignored so partially constructed
// trees from upstream parsers cannot poison the engine.
func (b *BooleanBuilder) Add(q Query, occur Occur) *BooleanBuilder {
	if q == nil {
		return b
	}
	b.clauses = append(b.clauses, BooleanClause{Occur: occur, Query: q})
	return b
}

// Must adds a required scoring clause.
func (b *BooleanBuilder) Must(q Query) *BooleanBuilder { return b.Add(q, OccurMust) }

// Filter adds a required non-scoring clause.
func (b *BooleanBuilder) Filter(q Query) *BooleanBuilder { return b.Add(q, OccurFilter) }

// Should adds an optional scoring clause.
func (b *BooleanBuilder) Should(q Query) *BooleanBuilder { return b.Add(q, OccurShould) }

// MustNot adds a prohibited clause.
func (b *BooleanBuilder) MustNot(q Query) *BooleanBuilder { return b.Add(q, OccurMustNot) }

// SetMinimumShouldMatch sets the SHOULD threshold. Negative values are
// treated as zero. The threshold is deliberately not clamped to the clause
// count: an unsatisfiable threshold rewrites to MatchNone.
func (b *BooleanBuilder) SetMinimumShouldMatch(n int) *BooleanBuilder {
	if n < 0 {
		n = 0
	}
	b.minimumShouldMatch = n
	return b
}

// Len returns the number of clauses added so far.
func (b *BooleanBuilder) Len() int { return len(b.clauses) }

// Build finalizes the boolean query. The builder can keep accumulating
// afterwards without affecting already built values.
func (b *BooleanBuilder) Build() *BooleanQuery {
	clauses := make([]BooleanClause, len(b.clauses))
	copy(clauses, b.clauses)
	return &BooleanQuery{
		Clauses:            clauses,
		MinimumShouldMatch: b.minimumShouldMatch,
	}
}
