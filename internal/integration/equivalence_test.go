package integration

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SearchCore/internal/engine"
	"SearchCore/internal/query"
	"SearchCore/internal/testutil"
)

// TestRewriteExecutionEquivalence checks the rewrite engine against the
// executor: for random queries, executing the simplified tree must return
// the same documents as the original tree with the same scores.
func TestRewriteExecutionEquivalence(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		rng := rand.New(rand.NewSource(seed))
		ix := testutil.BuildCorpus(rng, 3+rng.Intn(8))
		rewriting := engine.NewSearcher(ix)
		raw := engine.NewSearcher(ix, engine.WithoutRewrite())

		for i := 0; i < 500; i++ {
			q := testutil.RandomBooleanQuery(rng)
			assertSameResults(t, raw, rewriting, q, ix.DocCount())
		}
	}
}

func TestRewriteExecutionEquivalenceHandPicked(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	ix := testutil.BuildCorpus(rng, 0)
	rewriting := engine.NewSearcher(ix)
	raw := engine.NewSearcher(ix, engine.WithoutRewrite())

	term := func(s string) *query.TermQuery {
		return &query.TermQuery{Field: "body", Term: s}
	}
	queries := []query.Query{
		// Collapses to a constant-score filter.
		query.NewBooleanBuilder().Must(&query.MatchAllQuery{}).Filter(term("a")).Build(),
		// FILTER duplicate of a MUST drops out.
		query.NewBooleanBuilder().Must(term("a")).Filter(term("a")).Filter(term("b")).Build(),
		// SHOULD+FILTER pair promotes to MUST.
		query.NewBooleanBuilder().
			Should(term("a")).
			Filter(term("a")).
			Should(term("b")).
			SetMinimumShouldMatch(1).
			Build(),
		// Duplicate SHOULDs merge into a boost.
		query.NewBooleanBuilder().Should(term("a")).Should(term("a")).Build(),
		// Nested disjunction flattens.
		query.NewBooleanBuilder().
			Should(query.NewBooleanBuilder().Should(term("a")).Should(term("b")).Build()).
			Should(term("c")).
			Build(),
		// Nested conjunction flattens, demoted under FILTER.
		query.NewBooleanBuilder().
			Filter(query.NewBooleanBuilder().Must(term("a")).Must(term("b")).Build()).
			Must(term("c")).
			Build(),
		// Required and prohibited collide.
		query.NewBooleanBuilder().Must(term("a")).MustNot(term("a")).Should(term("b")).Build(),
		// Non-scoring context discards pure scoring clauses.
		&query.ConstantScoreQuery{Query: query.NewBooleanBuilder().
			Must(term("a")).
			Should(term("b")).
			Build()},
		// Everything prohibited.
		query.NewBooleanBuilder().Must(term("a")).MustNot(&query.MatchAllQuery{}).Build(),
	}
	for _, q := range queries {
		assertSameResults(t, raw, rewriting, q, ix.DocCount())
	}
}

func assertSameResults(t *testing.T, raw, rewriting *engine.Searcher, q query.Query, docCount int) {
	t.Helper()
	ctx := context.Background()
	k := docCount + 1

	want, err := raw.Search(ctx, q, k)
	require.NoError(t, err, "raw execution of %s", q)
	got, err := rewriting.Search(ctx, q, k)
	require.NoError(t, err, "rewritten execution of %s", q)

	wantScores := make(map[uint32]float32, len(want))
	for _, r := range want {
		wantScores[r.DocID] = r.Score
	}
	gotScores := make(map[uint32]float32, len(got))
	for _, r := range got {
		gotScores[r.DocID] = r.Score
	}

	require.Equal(t, len(wantScores), len(gotScores),
		"matching sets differ for %s (rewritten: %s)", q, query.Rewrite(q))
	for docID, wantScore := range wantScores {
		gotScore, ok := gotScores[docID]
		require.True(t, ok, "doc %d missing after rewrite of %s", docID, q)
		tolerance := math.Abs(float64(wantScore))/100 + 1e-6
		assert.InDelta(t, wantScore, gotScore, tolerance,
			"score of doc %d differs for %s", docID, q)
	}
}
