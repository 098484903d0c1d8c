package engine

import "sort"

// conjunction aligns multiple matchers on common documents. The lowest-cost
// matcher leads and the others are advanced to agreement.
type conjunction struct {
	children []Matcher
	lead     Matcher
	current  uint32
}

func newConjunction(children []Matcher) *conjunction {
	sorted := make([]Matcher, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Cost() < sorted[j].Cost()
	})
	return &conjunction{
		children: sorted,
		lead:     sorted[0],
	}
}

func (c *conjunction) Next() bool {
	if !c.lead.Next() {
		return false
	}
	return c.align(c.lead.DocID())
}

func (c *conjunction) DocID() uint32 {
	return c.current
}

func (c *conjunction) Advance(target uint32) bool {
	if !c.lead.Advance(target) {
		return false
	}
	return c.align(c.lead.DocID())
}

func (c *conjunction) Cost() int64 {
	return c.lead.Cost()
}

// align advances all children until they agree on a document.
func (c *conjunction) align(target uint32) bool {
	for {
		allAligned := true
		for _, child := range c.children {
			if child == c.lead {
				continue
			}
			if !child.Advance(target) {
				return false
			}
			if child.DocID() > target {
				target = child.DocID()
				if !c.lead.Advance(target) {
					return false
				}
				target = c.lead.DocID()
				allAligned = false
				break
			}
		}
		if allAligned {
			c.current = target
			return true
		}
	}
}
