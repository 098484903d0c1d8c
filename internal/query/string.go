package query

import (
	"fmt"
	"strings"
)

func (q *TermQuery) String() string {
	return q.Field + ":" + q.Term
}

func (q *PhraseQuery) String() string {
	var sb strings.Builder
	sb.WriteString(q.Field)
	sb.WriteString(`:"`)
	sb.WriteString(strings.Join(q.Terms, " "))
	sb.WriteString(`"`)
	if q.Slop != 0 {
		fmt.Fprintf(&sb, "~%d", q.Slop)
	}
	return sb.String()
}

func (q *PrefixQuery) String() string {
	return q.Field + ":" + q.Prefix + "*"
}

func (q *BoostQuery) String() string {
	return fmt.Sprintf("(%s)^%s", q.Query.String(), formatFloat(q.Factor))
}

func (q *ConstantScoreQuery) String() string {
	return "ConstantScore(" + q.Query.String() + ")"
}

func (q *MatchAllQuery) String() string { return "*:*" }

func (q *MatchNoneQuery) String() string { return "MatchNone" }

func (q *BooleanQuery) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, c := range q.Clauses {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.Occur.String())
		if sub, ok := c.Query.(*BooleanQuery); ok {
			sb.WriteString(sub.String())
		} else {
			sb.WriteString(c.Query.String())
		}
	}
	sb.WriteByte(')')
	if q.MinimumShouldMatch > 0 {
		fmt.Fprintf(&sb, "~%d", q.MinimumShouldMatch)
	}
	return sb.String()
}

// formatFloat renders a boost with at least one decimal, so Boost(q, 2)
// prints as (q)^2.0 and stays visually distinct from a slop suffix.
func formatFloat(f float32) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
