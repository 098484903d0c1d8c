package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SearchCore/internal/analysis"
	"SearchCore/internal/query"
)

func buildIndex(t *testing.T, bodies ...string) *Index {
	t.Helper()
	ix := NewIndex(analysis.NewStandardAnalyzer())
	for _, body := range bodies {
		ix.Add(map[string]string{"body": body})
	}
	return ix
}

func term(s string) *query.TermQuery {
	return &query.TermQuery{Field: "body", Term: s}
}

func docIDs(results []ScoredDoc) []uint32 {
	ids := make([]uint32, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}

func search(t *testing.T, ix *Index, q query.Query) []ScoredDoc {
	t.Helper()
	results, err := NewSearcher(ix).Search(context.Background(), q, 100)
	require.NoError(t, err)
	return results
}

func TestSearchTermQuery(t *testing.T) {
	ix := buildIndex(t, "a b c", "b c", "a", "")
	results := search(t, ix, term("a"))
	assert.ElementsMatch(t, []uint32{0, 2}, docIDs(results))
	for _, r := range results {
		assert.Greater(t, r.Score, float32(0))
	}
}

func TestSearchTermQueryMissingTerm(t *testing.T) {
	ix := buildIndex(t, "a b c")
	assert.Empty(t, search(t, ix, term("z")))
}

func TestSearchShorterDocumentScoresHigher(t *testing.T) {
	ix := buildIndex(t, "a", "a b c d e f g h")
	results := search(t, ix, term("a"))
	require.Len(t, results, 2)
	assert.Equal(t, uint32(0), results[0].DocID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchBooleanMust(t *testing.T) {
	ix := buildIndex(t, "a b c", "a b", "b c", "a")
	q := query.NewBooleanBuilder().Must(term("a")).Must(term("b")).Build()
	assert.ElementsMatch(t, []uint32{0, 1}, docIDs(search(t, ix, q)))
}

func TestSearchBooleanMustNot(t *testing.T) {
	ix := buildIndex(t, "a b c", "a b", "b c", "a")
	q := query.NewBooleanBuilder().Must(term("a")).MustNot(term("c")).Build()
	assert.ElementsMatch(t, []uint32{1, 3}, docIDs(search(t, ix, q)))
}

func TestSearchBooleanFilterDoesNotScore(t *testing.T) {
	ix := buildIndex(t, "a b", "a c")
	must := query.NewBooleanBuilder().Must(term("a")).Must(term("b")).Build()
	filtered := query.NewBooleanBuilder().Must(term("a")).Filter(term("b")).Build()

	mustResults := search(t, ix, must)
	filteredResults := search(t, ix, filtered)
	require.Len(t, mustResults, 1)
	require.Len(t, filteredResults, 1)
	assert.Equal(t, mustResults[0].DocID, filteredResults[0].DocID)
	assert.Less(t, filteredResults[0].Score, mustResults[0].Score)
}

func TestSearchBooleanShouldAddsScore(t *testing.T) {
	ix := buildIndex(t, "a b", "a")
	q := query.NewBooleanBuilder().Must(term("a")).Should(term("b")).Build()
	results := search(t, ix, q)
	require.Len(t, results, 2)
	// Both match via MUST, but doc 0 picks up the optional clause.
	assert.Equal(t, uint32(0), results[0].DocID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchMinimumShouldMatch(t *testing.T) {
	ix := buildIndex(t, "a b c", "a b", "a", "b c")
	q := query.NewBooleanBuilder().
		Should(term("a")).
		Should(term("b")).
		Should(term("c")).
		SetMinimumShouldMatch(2).
		Build()
	assert.ElementsMatch(t, []uint32{0, 1, 3}, docIDs(search(t, ix, q)))
}

func TestSearchPureDisjunctionNeedsOneMatch(t *testing.T) {
	ix := buildIndex(t, "a", "b", "c", "")
	q := query.NewBooleanBuilder().Should(term("a")).Should(term("b")).Build()
	assert.ElementsMatch(t, []uint32{0, 1}, docIDs(search(t, ix, q)))
}

func TestSearchOnlyProhibitedMatchesNothing(t *testing.T) {
	ix := buildIndex(t, "a", "b")
	q := query.NewBooleanBuilder().MustNot(term("a")).Build()
	assert.Empty(t, search(t, ix, q))
}

func TestSearchMatchAllScoresZero(t *testing.T) {
	ix := buildIndex(t, "a", "b", "")
	results := search(t, ix, &query.MatchAllQuery{})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, float32(0), r.Score)
	}
}

func TestSearchConstantScore(t *testing.T) {
	ix := buildIndex(t, "a b", "a")
	results := search(t, ix, &query.ConstantScoreQuery{Query: term("a")})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, float32(0), r.Score)
	}
}

func TestSearchBoostMultipliesScores(t *testing.T) {
	ix := buildIndex(t, "a b", "a")
	plain := search(t, ix, term("a"))
	boosted := search(t, ix, &query.BoostQuery{Query: term("a"), Factor: 3})
	require.Len(t, boosted, len(plain))
	for i := range plain {
		assert.Equal(t, plain[i].DocID, boosted[i].DocID)
		assert.InDelta(t, plain[i].Score*3, boosted[i].Score, 1e-6)
	}
}

func TestSearchPhraseQuery(t *testing.T) {
	ix := buildIndex(t, "a b c", "b a c", "a c b", "a b")
	q := &query.PhraseQuery{Field: "body", Terms: []string{"a", "b"}}
	assert.ElementsMatch(t, []uint32{0, 3}, docIDs(search(t, ix, q)))
}

func TestSearchPhraseQueryWithSlop(t *testing.T) {
	ix := buildIndex(t, "a x b", "a b", "b a", "a x x b")
	exact := &query.PhraseQuery{Field: "body", Terms: []string{"a", "b"}}
	assert.ElementsMatch(t, []uint32{1}, docIDs(search(t, ix, exact)))

	sloppy := &query.PhraseQuery{Field: "body", Terms: []string{"a", "b"}, Slop: 1}
	assert.ElementsMatch(t, []uint32{0, 1}, docIDs(search(t, ix, sloppy)))

	sloppier := &query.PhraseQuery{Field: "body", Terms: []string{"a", "b"}, Slop: 2}
	assert.ElementsMatch(t, []uint32{0, 1, 3}, docIDs(search(t, ix, sloppier)))
}

func TestSearchPrefixQuery(t *testing.T) {
	ix := buildIndex(t, "apple banana", "apricot", "banana", "")
	q := &query.PrefixQuery{Field: "body", Prefix: "ap"}
	results := search(t, ix, q)
	assert.ElementsMatch(t, []uint32{0, 1}, docIDs(results))
	for _, r := range results {
		assert.Equal(t, float32(0), r.Score)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := NewIndex(analysis.NewStandardAnalyzer())
	assert.Empty(t, search(t, ix, term("a")))
	assert.Empty(t, search(t, ix, &query.MatchAllQuery{}))
}

func TestSearchTopKLimit(t *testing.T) {
	ix := buildIndex(t, "a", "a", "a", "a", "a")
	results, err := NewSearcher(ix).Search(context.Background(), term("a"), 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchCancelledContext(t *testing.T) {
	ix := buildIndex(t, "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSearcher(ix).Search(ctx, term("a"), 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchUnsatisfiableThresholdRawPath(t *testing.T) {
	// Even without the rewrite pass, an impossible threshold matches
	// nothing rather than failing.
	ix := buildIndex(t, "a b")
	q := query.NewBooleanBuilder().
		Should(term("a")).
		SetMinimumShouldMatch(3).
		Build()
	results, err := NewSearcher(ix, WithoutRewrite()).Search(context.Background(), q, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTopKCollector(t *testing.T) {
	c := NewTopKCollector(3)
	c.Collect(1, 0.5)
	c.Collect(2, 2.0)
	c.Collect(3, 1.0)
	c.Collect(4, 3.0)
	c.Collect(5, 0.1)

	results := c.Results()
	require.Len(t, results, 3)
	assert.Equal(t, []uint32{4, 2, 3}, docIDs(results))
}

func TestTopKCollectorTieBreaksByDocID(t *testing.T) {
	c := NewTopKCollector(10)
	c.Collect(7, 1.0)
	c.Collect(3, 1.0)
	c.Collect(5, 2.0)
	assert.Equal(t, []uint32{5, 3, 7}, docIDs(c.Results()))
}
