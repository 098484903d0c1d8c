package engine

import (
	"sort"
	"sync"

	"SearchCore/internal/analysis"
)

type posting struct {
	docID     uint32
	freq      uint32
	positions []uint32
}

type fieldStats struct {
	postings map[string][]posting
	docLens  map[uint32]uint32
	totalLen uint64
}

// Index is an in-memory inverted index with positions. Document IDs are
// assigned sequentially, so postings lists stay sorted by construction.
type Index struct {
	mu       sync.RWMutex
	analyzer analysis.Analyzer
	fields   map[string]*fieldStats
	docCount uint32
}

// NewIndex creates an empty index using the given analyzer.
func NewIndex(a analysis.Analyzer) *Index {
	return &Index{
		analyzer: a,
		fields:   make(map[string]*fieldStats),
	}
}

// Add analyzes and indexes a document, returning its assigned ID. A field
// with empty text still counts the document, it just contributes no terms.
func (ix *Index) Add(doc map[string]string) uint32 {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	docID := ix.docCount
	ix.docCount++
	for field, text := range doc {
		tokens := ix.analyzer.Analyze(field, text)
		fs := ix.fields[field]
		if fs == nil {
			fs = &fieldStats{
				postings: make(map[string][]posting),
				docLens:  make(map[uint32]uint32),
			}
			ix.fields[field] = fs
		}
		fs.docLens[docID] = uint32(len(tokens))
		fs.totalLen += uint64(len(tokens))

		byTerm := make(map[string][]uint32)
		for _, tok := range tokens {
			byTerm[tok.Term] = append(byTerm[tok.Term], tok.Position)
		}
		for term, positions := range byTerm {
			fs.postings[term] = append(fs.postings[term], posting{
				docID:     docID,
				freq:      uint32(len(positions)),
				positions: positions,
			})
		}
	}
	return docID
}

// DocCount returns the number of indexed documents.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return int(ix.docCount)
}

// The accessors below assume the caller holds the read lock for the
// duration of the search.

func (ix *Index) rlock()   { ix.mu.RLock() }
func (ix *Index) runlock() { ix.mu.RUnlock() }

func (ix *Index) postingsFor(field, term string) []posting {
	fs := ix.fields[field]
	if fs == nil {
		return nil
	}
	return fs.postings[term]
}

func (ix *Index) docLens(field string) map[uint32]uint32 {
	fs := ix.fields[field]
	if fs == nil {
		return nil
	}
	return fs.docLens
}

func (ix *Index) avgDocLen(field string) float32 {
	fs := ix.fields[field]
	if fs == nil || ix.docCount == 0 || fs.totalLen == 0 {
		return 1
	}
	return float32(fs.totalLen) / float32(ix.docCount)
}

// termsWithPrefix returns the field's terms starting with prefix in sorted
// order, so prefix expansion is deterministic.
func (ix *Index) termsWithPrefix(field, prefix string) []string {
	fs := ix.fields[field]
	if fs == nil {
		return nil
	}
	var terms []string
	for term := range fs.postings {
		if len(term) >= len(prefix) && term[:len(prefix)] == prefix {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return terms
}
