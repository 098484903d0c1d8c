package engine

import (
	"container/heap"
	"sort"
)

// ScoredDoc is a matching document with its score.
type ScoredDoc struct {
	DocID uint32
	Score float32
}

// TopKCollector keeps the K highest-scoring documents seen so far using a
// min-heap of the current survivors.
type TopKCollector struct {
	k        int
	h        scoreHeap
	minScore float32
}

// NewTopKCollector creates a collector for the top K documents.
func NewTopKCollector(k int) *TopKCollector {
	if k <= 0 {
		k = 10
	}
	return &TopKCollector{
		k: k,
		h: make(scoreHeap, 0, k),
	}
}

// Collect offers a document to the collector.
func (c *TopKCollector) Collect(docID uint32, score float32) {
	if c.h.Len() < c.k {
		heap.Push(&c.h, ScoredDoc{DocID: docID, Score: score})
		if c.h.Len() == c.k {
			c.minScore = c.h[0].Score
		}
		return
	}
	if score > c.minScore {
		c.h[0] = ScoredDoc{DocID: docID, Score: score}
		heap.Fix(&c.h, 0)
		c.minScore = c.h[0].Score
	}
}

// Len returns the number of documents currently held.
func (c *TopKCollector) Len() int { return c.h.Len() }

// Results drains the collector, sorted by descending score with ascending
// docID as the tie-break.
func (c *TopKCollector) Results() []ScoredDoc {
	results := make([]ScoredDoc, len(c.h))
	copy(results, c.h)
	c.h = c.h[:0]
	c.minScore = 0
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results
}

type scoreHeap []ScoredDoc

func (h scoreHeap) Len() int           { return len(h) }
func (h scoreHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h scoreHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x any)        { *h = append(*h, x.(ScoredDoc)) }
func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
