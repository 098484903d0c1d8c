package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"SearchCore/internal/query"
)

// queryJSON is the wire form of a query tree. One struct covers every node
// kind; Type selects which fields are meaningful.
type queryJSON struct {
	Type string `json:"type"`

	// term, prefix
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`

	// phrase
	Terms []string `json:"terms,omitempty"`
	Slop  int      `json:"slop,omitempty"`

	// boost, constant_score
	Query  *queryJSON `json:"query,omitempty"`
	Factor float32    `json:"factor,omitempty"`

	// bool
	Must               []queryJSON `json:"must,omitempty"`
	Filter             []queryJSON `json:"filter,omitempty"`
	Should             []queryJSON `json:"should,omitempty"`
	MustNot            []queryJSON `json:"must_not,omitempty"`
	MinimumShouldMatch int         `json:"minimum_should_match,omitempty"`
}

var (
	ErrTooManyClauses = errors.New("server: boolean query has too many clauses")
	ErrTooDeep        = errors.New("server: query tree is too deep")
)

// ParseQuery decodes a JSON query DSL document into a query tree. Structural
// limits are enforced here so the rewrite engine and the executor only ever
// see bounded trees.
func ParseQuery(data []byte) (query.Query, error) {
	var raw queryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("server: invalid query JSON: %w", err)
	}
	return buildQuery(&raw, 1)
}

func buildQuery(raw *queryJSON, depth int) (query.Query, error) {
	if depth > query.MaxBooleanDepth {
		return nil, ErrTooDeep
	}

	switch raw.Type {
	case "term":
		if raw.Field == "" || raw.Value == "" {
			return nil, errors.New("server: term query requires field and value")
		}
		return &query.TermQuery{Field: raw.Field, Term: raw.Value}, nil

	case "phrase":
		if raw.Field == "" {
			return nil, errors.New("server: phrase query requires field")
		}
		if len(raw.Terms) > query.MaxPhraseLength {
			return nil, fmt.Errorf("server: phrase has %d terms, limit is %d", len(raw.Terms), query.MaxPhraseLength)
		}
		if raw.Slop < 0 || raw.Slop > query.MaxPhraseSlop {
			return nil, fmt.Errorf("server: phrase slop %d out of range [0, %d]", raw.Slop, query.MaxPhraseSlop)
		}
		terms := make([]string, len(raw.Terms))
		copy(terms, raw.Terms)
		return &query.PhraseQuery{Field: raw.Field, Terms: terms, Slop: raw.Slop}, nil

	case "prefix":
		if raw.Field == "" || raw.Value == "" {
			return nil, errors.New("server: prefix query requires field and value")
		}
		return &query.PrefixQuery{Field: raw.Field, Prefix: raw.Value}, nil

	case "match_all":
		return &query.MatchAllQuery{}, nil

	case "match_none":
		return &query.MatchNoneQuery{}, nil

	case "boost":
		if raw.Query == nil {
			return nil, errors.New("server: boost query requires a wrapped query")
		}
		if raw.Factor < 0 {
			return nil, fmt.Errorf("server: boost factor %v is negative", raw.Factor)
		}
		inner, err := buildQuery(raw.Query, depth+1)
		if err != nil {
			return nil, err
		}
		return &query.BoostQuery{Query: inner, Factor: raw.Factor}, nil

	case "constant_score":
		if raw.Query == nil {
			return nil, errors.New("server: constant_score query requires a wrapped query")
		}
		inner, err := buildQuery(raw.Query, depth+1)
		if err != nil {
			return nil, err
		}
		return &query.ConstantScoreQuery{Query: inner}, nil

	case "bool":
		total := len(raw.Must) + len(raw.Filter) + len(raw.Should) + len(raw.MustNot)
		if total > query.MaxBooleanClauses {
			return nil, fmt.Errorf("%w: %d clauses, limit is %d", ErrTooManyClauses, total, query.MaxBooleanClauses)
		}
		if raw.MinimumShouldMatch < 0 {
			return nil, errors.New("server: minimum_should_match must not be negative")
		}
		b := query.NewBooleanBuilder().SetMinimumShouldMatch(raw.MinimumShouldMatch)
		for _, group := range []struct {
			clauses []queryJSON
			occur   query.Occur
		}{
			{raw.Must, query.OccurMust},
			{raw.Filter, query.OccurFilter},
			{raw.Should, query.OccurShould},
			{raw.MustNot, query.OccurMustNot},
		} {
			for i := range group.clauses {
				sub, err := buildQuery(&group.clauses[i], depth+1)
				if err != nil {
					return nil, err
				}
				b.Add(sub, group.occur)
			}
		}
		return b.Build(), nil

	case "":
		return nil, errors.New("server: query type is required")

	default:
		return nil, fmt.Errorf("server: unknown query type %q", raw.Type)
	}
}

// encodeQuery renders a query tree back into the wire form. Used by the
// rewrite endpoint so callers see the simplified tree in the same DSL they
// submitted.
func encodeQuery(q query.Query) *queryJSON {
	switch v := q.(type) {
	case *query.TermQuery:
		return &queryJSON{Type: "term", Field: v.Field, Value: v.Term}
	case *query.PhraseQuery:
		return &queryJSON{Type: "phrase", Field: v.Field, Terms: v.Terms, Slop: v.Slop}
	case *query.PrefixQuery:
		return &queryJSON{Type: "prefix", Field: v.Field, Value: v.Prefix}
	case *query.MatchAllQuery:
		return &queryJSON{Type: "match_all"}
	case *query.MatchNoneQuery:
		return &queryJSON{Type: "match_none"}
	case *query.BoostQuery:
		return &queryJSON{Type: "boost", Factor: v.Factor, Query: encodeQuery(v.Query)}
	case *query.ConstantScoreQuery:
		return &queryJSON{Type: "constant_score", Query: encodeQuery(v.Query)}
	case *query.BooleanQuery:
		out := &queryJSON{Type: "bool", MinimumShouldMatch: v.MinimumShouldMatch}
		for _, c := range v.Clauses {
			sub := encodeQuery(c.Query)
			switch c.Occur {
			case query.OccurMust:
				out.Must = append(out.Must, *sub)
			case query.OccurFilter:
				out.Filter = append(out.Filter, *sub)
			case query.OccurShould:
				out.Should = append(out.Should, *sub)
			case query.OccurMustNot:
				out.MustNot = append(out.MustNot, *sub)
			}
		}
		return out
	default:
		return &queryJSON{Type: "match_none"}
	}
}
