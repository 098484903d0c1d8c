package scoring

import "math"

// Default BM25 parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// BM25Scorer computes BM25 relevance scores from index-wide statistics.
// Statistics are fixed at construction; searches snapshot the index state
// once and share one scorer across all term matchers of a query.
type BM25Scorer struct {
	K1 float32
	B  float32

	DocCount  int64
	AvgDocLen float32
}

// NewBM25Scorer creates a scorer with default parameters.
func NewBM25Scorer(docCount int64, avgDocLen float32) *BM25Scorer {
	return &BM25Scorer{
		K1:        DefaultK1,
		B:         DefaultB,
		DocCount:  docCount,
		AvgDocLen: avgDocLen,
	}
}

// IDF computes the inverse document frequency for a term.
//
//	IDF(qi) = ln(1 + (N - n(qi) + 0.5) / (n(qi) + 0.5))
func (s *BM25Scorer) IDF(docFreq int64) float32 {
	n := float64(docFreq)
	N := float64(s.DocCount)
	return float32(math.Log(1 + (N-n+0.5)/(n+0.5)))
}

// Score computes the BM25 score for a single term occurrence count.
//
//	score = IDF × (tf × (k1 + 1)) / (tf + k1 × (1 - b + b × dl / avgdl))
func (s *BM25Scorer) Score(termFreq uint32, docLen uint32, idf float32) float32 {
	tf := float32(termFreq)
	dl := float32(docLen)

	numerator := tf * (s.K1 + 1)
	denominator := tf + s.K1*(1-s.B+s.B*dl/s.AvgDocLen)
	if denominator == 0 {
		return 0
	}
	return idf * numerator / denominator
}
