package testutil

import (
	"math/rand"
	"strings"

	"SearchCore/internal/analysis"
	"SearchCore/internal/engine"
	"SearchCore/internal/query"
)

// FixedCorpus is a small document set covering the interesting overlap
// cases: full, empty, and partial term coverage over a tiny vocabulary.
var FixedCorpus = []string{"a b c", "", "a b", "b c", "a", "c"}

// BuildCorpus indexes the fixed corpus plus extra random documents drawn
// from the same four-term vocabulary.
func BuildCorpus(rng *rand.Rand, extraDocs int) *engine.Index {
	ix := engine.NewIndex(analysis.NewStandardAnalyzer())
	for _, body := range FixedCorpus {
		ix.Add(map[string]string{"body": body})
	}
	for i := 0; i < extraDocs; i++ {
		numTerms := rng.Intn(20)
		var sb strings.Builder
		for j := 0; j < numTerms; j++ {
			sb.WriteByte(byte('a' + rng.Intn(4)))
			sb.WriteByte(' ')
		}
		ix.Add(map[string]string{"body": sb.String()})
	}
	return ix
}

// RandomBooleanQuery generates a boolean query over the corpus vocabulary,
// with random occurrence kinds, thresholds, nesting, and score wrappers.
// The generated shapes deliberately include degenerate ones: empty
// booleans, unsatisfiable thresholds, MatchAll in any position.
func RandomBooleanQuery(rng *rand.Rand) query.Query {
	return randomBoolean(rng, 0)
}

func randomBoolean(rng *rand.Rand, depth int) query.Query {
	numClauses := rng.Intn(5)
	b := query.NewBooleanBuilder()
	numShoulds := 0
	for i := 0; i < numClauses; i++ {
		occur := randomOccur(rng)
		if occur == query.OccurShould {
			numShoulds++
		}
		b.Add(randomLeaf(rng, depth), occur)
	}
	if rng.Intn(2) == 0 {
		b.SetMinimumShouldMatch(rng.Intn(numShoulds + 2))
	}
	q := query.Query(b.Build())
	if rng.Intn(2) == 0 {
		q = randomWrapper(rng, q)
	}
	return q
}

func randomOccur(rng *rand.Rand) query.Occur {
	switch rng.Intn(4) {
	case 0:
		return query.OccurMust
	case 1:
		return query.OccurFilter
	case 2:
		return query.OccurShould
	default:
		return query.OccurMustNot
	}
}

func randomWrapper(rng *rand.Rand, q query.Query) query.Query {
	if rng.Intn(2) == 0 {
		return &query.BoostQuery{Query: q, Factor: float32(rng.Intn(5))}
	}
	return &query.ConstantScoreQuery{Query: q}
}

func randomLeaf(rng *rand.Rand, depth int) query.Query {
	if rng.Intn(5) == 0 {
		return randomWrapper(rng, randomLeaf(rng, depth))
	}
	n := rng.Intn(6)
	switch {
	case n == 0:
		return &query.MatchAllQuery{}
	case n < 5:
		term := string(byte('a' + n - 1))
		return &query.TermQuery{Field: "body", Term: term}
	default:
		if depth >= 3 {
			return &query.TermQuery{Field: "body", Term: "a"}
		}
		return randomBoolean(rng, depth+1)
	}
}
