package analysis

// Token is a single analyzed term with its position in the token stream.
// Positions are what phrase matching operates on, so analyzers must number
// tokens consecutively from zero.
type Token struct {
	Term     string
	Position uint32
}

// Analyzer turns field text into a token stream. Implementations must be
// safe for concurrent use: one analyzer instance is shared across all
// indexing and query parsing.
type Analyzer interface {
	Analyze(field, text string) []Token
}
