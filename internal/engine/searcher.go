package engine

import (
	"context"
	"fmt"

	"SearchCore/internal/query"
	"SearchCore/internal/scoring"
)

// checkInterval amortizes context cancellation checks in the collect loop.
const checkInterval = 1024

// Searcher executes queries against an index. Queries are simplified
// before execution; WithoutRewrite disables that, which only makes sense
// for tests that compare the two execution paths.
type Searcher struct {
	index          *Index
	rewriteQueries bool
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithoutRewrite makes the searcher execute query trees as given.
func WithoutRewrite() Option {
	return func(s *Searcher) { s.rewriteQueries = false }
}

// NewSearcher creates a searcher over the index.
func NewSearcher(ix *Index, opts ...Option) *Searcher {
	s := &Searcher{index: ix, rewriteQueries: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the top k documents matching q, sorted by descending
// score.
func (s *Searcher) Search(ctx context.Context, q query.Query, k int) ([]ScoredDoc, error) {
	if s.rewriteQueries {
		q = query.Rewrite(q)
	}

	s.index.rlock()
	defer s.index.runlock()

	b := &matcherBuilder{index: s.index, scorers: make(map[string]*scoring.BM25Scorer)}
	m, err := b.build(q)
	if err != nil {
		return nil, err
	}

	collector := NewTopKCollector(k)
	n := 0
	for m.Next() {
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		collector.Collect(m.DocID(), m.Score())
		n++
	}
	return collector.Results(), nil
}

// matcherBuilder turns a query tree into a matcher tree. It lives for one
// search, sharing per-field scorers across all term matchers.
type matcherBuilder struct {
	index   *Index
	scorers map[string]*scoring.BM25Scorer
}

func (b *matcherBuilder) build(q query.Query) (Matcher, error) {
	switch v := q.(type) {
	case *query.TermQuery:
		return b.buildTerm(v.Field, v.Term), nil

	case *query.PhraseQuery:
		return b.buildPhrase(v)

	case *query.PrefixQuery:
		return b.buildPrefix(v), nil

	case *query.BoostQuery:
		inner, err := b.build(v.Query)
		if err != nil {
			return nil, err
		}
		return &boostMatcher{Matcher: inner, factor: v.Factor}, nil

	case *query.ConstantScoreQuery:
		inner, err := b.build(v.Query)
		if err != nil {
			return nil, err
		}
		return &constScoreMatcher{Matcher: inner}, nil

	case *query.MatchAllQuery:
		return newMatchAllMatcher(int(b.index.docCount)), nil

	case *query.MatchNoneQuery:
		return matchNoneMatcher{}, nil

	case *query.BooleanQuery:
		return b.buildBoolean(v)

	default:
		return nil, fmt.Errorf("engine: unsupported query type %T", q)
	}
}

func (b *matcherBuilder) buildTerm(field, term string) *termMatcher {
	return newTermMatcher(
		b.index.postingsFor(field, term),
		b.index.docLens(field),
		b.scorerFor(field),
	)
}

func (b *matcherBuilder) buildPhrase(q *query.PhraseQuery) (Matcher, error) {
	if len(q.Terms) == 0 {
		return matchNoneMatcher{}, nil
	}
	children := make([]*termMatcher, len(q.Terms))
	for i, term := range q.Terms {
		children[i] = b.buildTerm(q.Field, term)
	}
	slop := q.Slop
	if slop < 0 {
		slop = 0
	}
	return newPhraseMatcher(children, uint32(slop), b.index.docLens(q.Field), b.scorerFor(q.Field)), nil
}

// buildPrefix expands the prefix against the current terms and matches
// their union with a constant score.
func (b *matcherBuilder) buildPrefix(q *query.PrefixQuery) Matcher {
	terms := b.index.termsWithPrefix(q.Field, q.Prefix)
	if len(terms) == 0 {
		return matchNoneMatcher{}
	}
	optional := make([]Matcher, len(terms))
	for i, term := range terms {
		optional[i] = b.buildTerm(q.Field, term)
	}
	union := newBooleanMatcher(nil, nil, optional, nil, 0)
	return &constScoreMatcher{Matcher: union}
}

func (b *matcherBuilder) buildBoolean(q *query.BooleanQuery) (Matcher, error) {
	var required, musts, optional, prohibited []Matcher
	for _, c := range q.Clauses {
		m, err := b.build(c.Query)
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case query.OccurMust:
			required = append(required, m)
			musts = append(musts, m)
		case query.OccurFilter:
			required = append(required, m)
		case query.OccurShould:
			optional = append(optional, m)
		case query.OccurMustNot:
			prohibited = append(prohibited, m)
		}
	}
	return newBooleanMatcher(required, musts, optional, prohibited, q.MinimumShouldMatch), nil
}

func (b *matcherBuilder) scorerFor(field string) *scoring.BM25Scorer {
	s := b.scorers[field]
	if s == nil {
		s = scoring.NewBM25Scorer(int64(b.index.docCount), b.index.avgDocLen(field))
		b.scorers[field] = s
	}
	return s
}
