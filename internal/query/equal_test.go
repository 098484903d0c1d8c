package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualLeaves(t *testing.T) {
	tests := []struct {
		name string
		a, b Query
		want bool
	}{
		{"same term", term("bar"), term("bar"), true},
		{"different term", term("bar"), term("baz"), false},
		{"different field", term("bar"), &TermQuery{Field: "other", Term: "bar"}, false},
		{"term vs prefix", term("bar"), &PrefixQuery{Field: "foo", Prefix: "bar"}, false},
		{"same phrase", phrase("a", "b"), phrase("a", "b"), true},
		{"phrase order matters", phrase("a", "b"), phrase("b", "a"), false},
		{"phrase slop differs", phrase("a", "b"),
			&PhraseQuery{Field: "field", Terms: []string{"a", "b"}, Slop: 2}, false},
		{"same prefix", &PrefixQuery{Field: "f", Prefix: "ab"},
			&PrefixQuery{Field: "f", Prefix: "ab"}, true},
		{"match all", &MatchAllQuery{}, &MatchAllQuery{}, true},
		{"match none", &MatchNoneQuery{}, &MatchNoneQuery{}, true},
		{"all vs none", &MatchAllQuery{}, &MatchNoneQuery{}, false},
		{"same boost", &BoostQuery{Query: term("bar"), Factor: 2},
			&BoostQuery{Query: term("bar"), Factor: 2}, true},
		{"boost factor differs", &BoostQuery{Query: term("bar"), Factor: 2},
			&BoostQuery{Query: term("bar"), Factor: 3}, false},
		{"same constant score", &ConstantScoreQuery{Query: term("bar")},
			&ConstantScoreQuery{Query: term("bar")}, true},
		{"nil both", nil, nil, true},
		{"nil one side", term("bar"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
			if tt.want && tt.a != nil {
				assert.Equal(t, Hash(tt.a), Hash(tt.b))
			}
		})
	}
}

func TestEqualBooleanIgnoresClauseOrder(t *testing.T) {
	a := NewBooleanBuilder().
		Must(term("bar")).
		Filter(term("baz")).
		Should(term("quux")).
		MustNot(term("quz")).
		SetMinimumShouldMatch(1).
		Build()
	b := NewBooleanBuilder().
		MustNot(term("quz")).
		Should(term("quux")).
		Must(term("bar")).
		Filter(term("baz")).
		SetMinimumShouldMatch(1).
		Build()
	require.True(t, Equal(a, b))
	require.Equal(t, Hash(a), Hash(b))
}

func TestEqualBooleanRespectsOccurAndThreshold(t *testing.T) {
	must := NewBooleanBuilder().Must(term("bar")).Build()
	filter := NewBooleanBuilder().Filter(term("bar")).Build()
	require.False(t, Equal(must, filter))

	loose := NewBooleanBuilder().Should(term("a")).Should(term("b")).Build()
	strict := NewBooleanBuilder().
		Should(term("a")).
		Should(term("b")).
		SetMinimumShouldMatch(1).
		Build()
	require.False(t, Equal(loose, strict))
}

func TestEqualBooleanMultiset(t *testing.T) {
	// Two copies of a clause on one side need two on the other.
	a := NewBooleanBuilder().Should(term("a")).Should(term("a")).Build()
	b := NewBooleanBuilder().Should(term("a")).Should(term("b")).Build()
	require.False(t, Equal(a, b))

	c := NewBooleanBuilder().Should(term("a")).Should(term("a")).Build()
	require.True(t, Equal(a, c))
}

func TestEqualNestedBoolean(t *testing.T) {
	inner1 := NewBooleanBuilder().Should(term("a")).Should(term("b")).Build()
	inner2 := NewBooleanBuilder().Should(term("b")).Should(term("a")).Build()
	a := NewBooleanBuilder().Must(inner1).Filter(term("c")).Build()
	b := NewBooleanBuilder().Filter(term("c")).Must(inner2).Build()
	require.True(t, Equal(a, b))
	require.Equal(t, Hash(a), Hash(b))
}

func TestStripBoost(t *testing.T) {
	plain := term("bar")
	q, f := stripBoost(plain)
	assert.Same(t, plain, q)
	assert.Equal(t, float32(1), f)

	boosted := &BoostQuery{
		Query:  &BoostQuery{Query: term("bar"), Factor: 3},
		Factor: 2,
	}
	q, f = stripBoost(boosted)
	assert.True(t, Equal(term("bar"), q))
	assert.Equal(t, float32(6), f)
}

func TestEqualIgnoringBoost(t *testing.T) {
	a := &BoostQuery{Query: term("bar"), Factor: 2}
	b := &BoostQuery{Query: term("bar"), Factor: 5}
	require.True(t, equalIgnoringBoost(a, b))
	require.True(t, equalIgnoringBoost(a, term("bar")))
	require.Equal(t, hashIgnoringBoost(a), hashIgnoringBoost(term("bar")))
	require.False(t, equalIgnoringBoost(a, term("baz")))
}
