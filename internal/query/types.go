package query

// Occur specifies how a clause participates in matching and scoring.
type Occur int

const (
	// OccurMust clauses must match and contribute to the score.
	OccurMust Occur = iota
	// OccurFilter clauses must match but do not contribute to the score.
	OccurFilter
	// OccurShould clauses are optional; at least MinimumShouldMatch of them
	// (or one, if the query has no required clauses) must match. Matching
	// SHOULD clauses contribute to the score.
	OccurShould
	// OccurMustNot clauses must not match and never score.
	OccurMustNot
)

// IsRequired reports whether a clause with this occur must match.
func (o Occur) IsRequired() bool { return o == OccurMust || o == OccurFilter }

// IsProhibited reports whether a clause with this occur must not match.
func (o Occur) IsProhibited() bool { return o == OccurMustNot }

// IsScoring reports whether a matching clause with this occur contributes
// to the document score.
func (o Occur) IsScoring() bool { return o == OccurMust || o == OccurShould }

func (o Occur) String() string {
	switch o {
	case OccurMust:
		return "+"
	case OccurFilter:
		return "#"
	case OccurMustNot:
		return "-"
	default:
		return ""
	}
}

// BooleanClause pairs a sub-query with an occurrence kind.
type BooleanClause struct {
	Occur Occur
	Query Query
}

// BooleanQuery combines sub-queries with boolean logic. A document matches
// when every MUST/FILTER clause matches, no MUST_NOT clause matches, and at
// least MinimumShouldMatch SHOULD clauses match (at least one when there are
// no required clauses). A BooleanQuery with no clauses matches nothing.
type BooleanQuery struct {
	Clauses            []BooleanClause
	MinimumShouldMatch int
}

func (q *BooleanQuery) Type() QueryType { return QueryTypeBoolean }

// TermQuery matches documents containing the exact analyzed term.
type TermQuery struct {
	Field string
	Term  string
}

func (q *TermQuery) Type() QueryType { return QueryTypeTerm }

// PhraseQuery matches documents where the terms appear in sequence within
// the given slop. The rewrite engine treats it as an opaque leaf except for
// its degenerate forms: an empty phrase matches nothing and a single-term
// phrase is a plain term query.
type PhraseQuery struct {
	Field string
	Terms []string
	Slop  int
}

func (q *PhraseQuery) Type() QueryType { return QueryTypePhrase }

// Rewrite simplifies degenerate phrases.
func (q *PhraseQuery) Rewrite() Query {
	switch len(q.Terms) {
	case 0:
		return &MatchNoneQuery{}
	case 1:
		return &TermQuery{Field: q.Field, Term: q.Terms[0]}
	default:
		return q
	}
}

// PrefixQuery matches documents containing any term that starts with the
// given prefix. Opaque to the rewrite engine.
type PrefixQuery struct {
	Field  string
	Prefix string
}

func (q *PrefixQuery) Type() QueryType { return QueryTypePrefix }

// BoostQuery multiplies the score of its wrapped query by Factor. A factor
// of zero keeps the matching set intact but removes the wrapped query's
// score contribution.
type BoostQuery struct {
	Query  Query
	Factor float32
}

func (q *BoostQuery) Type() QueryType { return QueryTypeBoost }

// ConstantScoreQuery matches exactly the documents its wrapped query
// matches but scores zero for every match. Everything beneath it is
// non-scoring context.
type ConstantScoreQuery struct {
	Query Query
}

func (q *ConstantScoreQuery) Type() QueryType { return QueryTypeConstantScore }

// MatchAllQuery matches all documents. Identity element for conjunction.
type MatchAllQuery struct{}

func (q *MatchAllQuery) Type() QueryType { return QueryTypeMatchAll }

// MatchNoneQuery matches no documents. Identity element for disjunction and
// annihilator for conjunction.
type MatchNoneQuery struct{}

func (q *MatchNoneQuery) Type() QueryType { return QueryTypeMatchNone }
