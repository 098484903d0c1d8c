package query

// QueryType identifies the kind of query node.
type QueryType int

const (
	QueryTypeTerm QueryType = iota
	QueryTypeBoolean
	QueryTypePhrase
	QueryTypePrefix
	QueryTypeBoost
	QueryTypeConstantScore
	QueryTypeMatchAll
	QueryTypeMatchNone
)

// Query is the interface for all query AST nodes. Nodes are immutable once
// constructed: the rewrite engine never mutates a node in place, it either
// returns a freshly built replacement or the identical instance.
type Query interface {
	Type() QueryType

	// String renders the query in a compact form: "+" marks MUST clauses,
	// "#" FILTER, "-" MUST_NOT, and SHOULD clauses are unmarked.
	String() string
}

// Rewriter is implemented by query nodes that can simplify themselves.
// Rewrite returns a simpler equivalent query, or the receiver itself when
// the node is already in its simplest form. Leaf kinds that never simplify
// do not implement Rewriter and pass through the rewrite engine untouched.
type Rewriter interface {
	Rewrite() Query
}

// Boolean operator limits, enforced at construction boundaries (the rewrite
// engine itself never grows a tree past its input size).
const (
	MaxBooleanClauses = 1024
	MaxBooleanDepth   = 10
)

// Phrase limits.
const (
	MaxPhraseLength = 50
	MaxPhraseSlop   = 100
)
