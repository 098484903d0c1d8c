package query

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func TestQueryString(t *testing.T) {
	queries := []Query{
		term("bar"),
		&PhraseQuery{Field: "field", Terms: []string{"a", "b"}},
		&PhraseQuery{Field: "field", Terms: []string{"a", "b"}, Slop: 2},
		&PrefixQuery{Field: "foo", Prefix: "ba"},
		&BoostQuery{Query: term("bar"), Factor: 2},
		&BoostQuery{Query: term("bar"), Factor: 2.5},
		&BoostQuery{Query: &ConstantScoreQuery{Query: term("bar")}, Factor: 0},
		&ConstantScoreQuery{Query: term("bar")},
		&MatchAllQuery{},
		&MatchNoneQuery{},
		NewBooleanBuilder().
			Must(term("bar")).
			Filter(term("baz")).
			Should(term("quux")).
			MustNot(term("quz")).
			SetMinimumShouldMatch(1).
			Build(),
		NewBooleanBuilder().
			Should(NewBooleanBuilder().Should(term("a")).Should(term("b")).Build()).
			Should(term("c")).
			Build(),
	}

	var sb strings.Builder
	for _, q := range queries {
		sb.WriteString(q.String())
		sb.WriteByte('\n')
	}

	g := goldie.New(t)
	g.Assert(t, "query_strings", []byte(sb.String()))
}

func TestBooleanStringMarksOccur(t *testing.T) {
	q := NewBooleanBuilder().
		Must(term("a")).
		MustNot(term("b")).
		Build()
	assert.Equal(t, "(+foo:a -foo:b)", q.String())
}
