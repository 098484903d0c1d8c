package query

// Rewrite applies simplification rules to a query tree until a fixed point
// is reached. The result matches the same documents as the input and scores
// them identically; only the shape and evaluation cost of the tree change.
// When no rule applies anywhere in the tree, Rewrite returns the identical
// instance, so callers can detect convergence with a pointer comparison
// instead of a structural one.
func Rewrite(q Query) Query {
	for {
		rewritten := rewriteOnce(q)
		if rewritten == q {
			return q
		}
		q = rewritten
	}
}

// rewriteOnce performs a single rewrite pass over the tree. At most one rule
// family fires per boolean node per pass; the Rewrite loop above re-runs
// passes until none fires. Keeping the loop in the driver bounds stack depth
// by tree depth rather than by the number of rule firings.
func rewriteOnce(q Query) Query {
	switch v := q.(type) {
	case *BooleanQuery:
		return rewriteBoolean(v)
	case *BoostQuery:
		return rewriteBoost(v)
	case *ConstantScoreQuery:
		return rewriteConstantScore(v)
	default:
		if r, ok := q.(Rewriter); ok {
			return r.Rewrite()
		}
		return q
	}
}

func rewriteBoost(q *BoostQuery) Query {
	inner := rewriteOnce(q.Query)
	if q.Factor == 1 {
		return inner
	}
	switch iv := inner.(type) {
	case *MatchNoneQuery:
		return iv
	case *BoostQuery:
		return &BoostQuery{Query: iv.Query, Factor: q.Factor * iv.Factor}
	}
	if inner != q.Query {
		return &BoostQuery{Query: inner, Factor: q.Factor}
	}
	return q
}

func rewriteConstantScore(q *ConstantScoreQuery) Query {
	inner := rewriteOnce(q.Query)

	// Scores beneath a constant-score wrapper are discarded, so boost
	// wrappers are meaningless and a nested constant score is redundant.
	for {
		if b, ok := inner.(*BoostQuery); ok {
			inner = b.Query
			continue
		}
		break
	}
	if cs, ok := inner.(*ConstantScoreQuery); ok {
		return cs
	}
	if _, ok := inner.(*MatchNoneQuery); ok {
		return inner
	}
	if bq, ok := inner.(*BooleanQuery); ok {
		if nb := rewriteNoScoring(bq); nb != bq {
			return &ConstantScoreQuery{Query: nb}
		}
	}
	if inner != q.Query {
		return &ConstantScoreQuery{Query: inner}
	}
	return q
}

// rewriteNoScoring normalizes a boolean query that sits in non-scoring
// context: MUST clauses demote to FILTER, score-only wrappers on clause
// queries are stripped, and SHOULD clauses that exist purely as scoring
// boosts (threshold zero, with required clauses carrying the matching) are
// removed. Returns q itself when nothing changes.
func rewriteNoScoring(q *BooleanQuery) *BooleanQuery {
	hasRequired := false
	for _, c := range q.Clauses {
		if c.Occur.IsRequired() {
			hasRequired = true
			break
		}
	}

	changed := false
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		if c.Occur == OccurShould && q.MinimumShouldMatch == 0 && hasRequired {
			changed = true
			continue
		}
		occur := c.Occur
		if occur == OccurMust {
			occur = OccurFilter
			changed = true
		}
		sub := stripNonScoring(c.Query)
		if sub != c.Query {
			changed = true
		}
		clauses = append(clauses, BooleanClause{Occur: occur, Query: sub})
	}
	if !changed {
		return q
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// stripNonScoring unwraps boost and constant-score wrappers, which cannot
// influence matching and are dead weight wherever scores are ignored.
func stripNonScoring(q Query) Query {
	for {
		switch v := q.(type) {
		case *BoostQuery:
			q = v.Query
		case *ConstantScoreQuery:
			q = v.Query
		default:
			return q
		}
	}
}

// rewriteBoolean applies the boolean simplification rules. Rules are tried
// in a fixed order and the first one that changes anything returns the
// replacement; the driver loop picks it up from there. Termination holds
// because every rule strictly shrinks the clause list, replaces the node
// with a simpler leaf, or removes a nesting level.
func rewriteBoolean(q *BooleanQuery) Query {
	// Empty collapse.
	if len(q.Clauses) == 0 {
		return &MatchNoneQuery{}
	}

	// Single-clause collapse.
	if len(q.Clauses) == 1 {
		c := q.Clauses[0]
		if q.MinimumShouldMatch == 1 && c.Occur == OccurShould {
			return c.Query
		}
		if q.MinimumShouldMatch == 0 {
			switch c.Occur {
			case OccurMust, OccurShould:
				return c.Query
			case OccurFilter:
				return &BoostQuery{Query: &ConstantScoreQuery{Query: c.Query}, Factor: 0}
			}
			// A lone MUST_NOT matches nothing useful and is left alone.
		}
	}

	// Rewrite children. Any change restarts the driver on the replacement
	// before this node's own rules run, so rule applications propagate one
	// level per pass and already-stable subtrees are not re-derived.
	{
		changed := false
		clauses := make([]BooleanClause, len(q.Clauses))
		for i, c := range q.Clauses {
			r := rewriteOnce(c.Query)
			if r != c.Query {
				changed = true
			}
			clauses[i] = BooleanClause{Occur: c.Occur, Query: r}
		}
		if changed {
			return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
		}
	}

	if r := simplifyNonScoringClauses(q); r != nil {
		return r
	}
	if r := dedupClauseSets(q); r != nil {
		return r
	}
	if r := dedupMustAndFilter(q); r != nil {
		return r
	}
	if r := convertShouldAndFilterToMust(q); r != nil {
		return r
	}
	if r := checkRequiredAgainstProhibited(q); r != nil {
		return r
	}
	if r := absorbMatchAllMatchNone(q); r != nil {
		return r
	}
	if r := mergeDuplicateScoringClauses(q); r != nil {
		return r
	}
	if r := removeMatchAllFilters(q); r != nil {
		return r
	}
	if r := collapseShouldCount(q); r != nil {
		return r
	}
	if r := collapseMustMatchAll(q); r != nil {
		return r
	}
	if r := flattenConjunctions(q); r != nil {
		return r
	}
	if r := flattenShouldDisjunctions(q); r != nil {
		return r
	}
	if r := flattenMustDisjunction(q); r != nil {
		return r
	}
	return q
}

// simplifyNonScoringClauses strips boost and constant-score wrappers inside
// FILTER and MUST_NOT clauses, where scores are never read.
func simplifyNonScoringClauses(q *BooleanQuery) Query {
	changed := false
	clauses := make([]BooleanClause, len(q.Clauses))
	for i, c := range q.Clauses {
		sub := c.Query
		if c.Occur == OccurFilter || c.Occur == OccurMustNot {
			sub = stripNonScoring(sub)
			if sub != c.Query {
				changed = true
			}
		}
		clauses[i] = BooleanClause{Occur: c.Occur, Query: sub}
	}
	if !changed {
		return nil
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// dedupClauseSets removes exact duplicates among FILTER clauses and among
// MUST_NOT clauses; both behave as sets.
func dedupClauseSets(q *BooleanQuery) Query {
	seen := map[Occur]map[uint64][]Query{
		OccurFilter:  {},
		OccurMustNot: {},
	}
	changed := false
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		if set, ok := seen[c.Occur]; ok {
			h := Hash(c.Query)
			if containsEqual(set[h], c.Query) {
				changed = true
				continue
			}
			set[h] = append(set[h], c.Query)
		}
		clauses = append(clauses, c)
	}
	if !changed {
		return nil
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// dedupMustAndFilter drops FILTER clauses whose query is also a MUST clause:
// the MUST already requires and scores the same documents.
func dedupMustAndFilter(q *BooleanQuery) Query {
	musts := clauseIndex(q, OccurMust)
	if len(musts) == 0 {
		return nil
	}
	changed := false
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		if c.Occur == OccurFilter && containsEqual(musts[Hash(c.Query)], c.Query) {
			changed = true
			continue
		}
		clauses = append(clauses, c)
	}
	if !changed {
		return nil
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// convertShouldAndFilterToMust merges SHOULD+FILTER pairs on the same query
// into a single MUST clause. The filter already forces the document to
// match, so the optional clause always matches too: it scores like a MUST,
// and it permanently consumes one slot of the SHOULD threshold.
func convertShouldAndFilterToMust(q *BooleanQuery) Query {
	filters := clauseIndex(q, OccurFilter)
	if len(filters) == 0 {
		return nil
	}
	shoulds := clauseIndex(q, OccurShould)
	if len(shoulds) == 0 {
		return nil
	}

	consumed := map[int]bool{} // indices of FILTER clauses to drop
	promoted := map[int]bool{} // indices of SHOULD clauses to promote
	for i, c := range q.Clauses {
		if c.Occur != OccurShould {
			continue
		}
		h := Hash(c.Query)
		for j, other := range q.Clauses {
			if other.Occur != OccurFilter || consumed[j] {
				continue
			}
			if Hash(other.Query) == h && Equal(c.Query, other.Query) {
				consumed[j] = true
				promoted[i] = true
				break
			}
		}
	}
	if len(promoted) == 0 {
		return nil
	}

	msm := q.MinimumShouldMatch - len(promoted)
	if msm < 0 {
		msm = 0
	}
	clauses := make([]BooleanClause, 0, len(q.Clauses)-len(consumed))
	for i, c := range q.Clauses {
		if consumed[i] {
			continue
		}
		if promoted[i] {
			c = BooleanClause{Occur: OccurMust, Query: c.Query}
		}
		clauses = append(clauses, c)
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: msm}
}

// checkRequiredAgainstProhibited rewrites to MatchNone when a required
// clause and a prohibited clause carry the same query: no document can be
// both required and forbidden to match it.
func checkRequiredAgainstProhibited(q *BooleanQuery) Query {
	prohibited := clauseIndex(q, OccurMustNot)
	if len(prohibited) == 0 {
		return nil
	}
	for _, c := range q.Clauses {
		if c.Occur.IsRequired() && containsEqual(prohibited[Hash(c.Query)], c.Query) {
			return &MatchNoneQuery{}
		}
	}
	return nil
}

// absorbMatchAllMatchNone applies the absorbing/identity element rules:
// prohibiting everything or requiring nothing kills the whole query, while
// MatchNone as an optional or prohibited clause is simply dropped.
func absorbMatchAllMatchNone(q *BooleanQuery) Query {
	changed := false
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		switch c.Query.(type) {
		case *MatchAllQuery:
			if c.Occur == OccurMustNot {
				return &MatchNoneQuery{}
			}
		case *MatchNoneQuery:
			if c.Occur.IsRequired() {
				return &MatchNoneQuery{}
			}
			// SHOULD or MUST_NOT: identity element, drop the clause.
			changed = true
			continue
		}
		clauses = append(clauses, c)
	}
	if !changed {
		return nil
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// mergeDuplicateScoringClauses merges MUST clauses (and, when the threshold
// allows, SHOULD clauses) that are equal up to an outer boost into a single
// clause whose boost is the sum of the originals. Candidates are grouped by
// boost-stripped hash so large clause lists dedup in near-linear time.
func mergeDuplicateScoringClauses(q *BooleanQuery) Query {
	merged := mergeOccur(q, OccurMust)
	if merged == nil && q.MinimumShouldMatch <= 1 {
		merged = mergeOccur(q, OccurShould)
	}
	return merged
}

func mergeOccur(q *BooleanQuery, occur Occur) Query {
	groups := make(map[uint64][]int)
	for i, c := range q.Clauses {
		if c.Occur == occur {
			h := hashIgnoringBoost(c.Query)
			groups[h] = append(groups[h], i)
		}
	}

	drop := map[int]bool{}
	replace := map[int]Query{}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		for i := 0; i < len(idxs); i++ {
			if drop[idxs[i]] || replace[idxs[i]] != nil {
				continue
			}
			first := q.Clauses[idxs[i]].Query
			stripped, boost := stripBoost(first)
			mergedAny := false
			for j := i + 1; j < len(idxs); j++ {
				other := q.Clauses[idxs[j]].Query
				if drop[idxs[j]] || !equalIgnoringBoost(first, other) {
					continue
				}
				_, b := stripBoost(other)
				boost += b
				drop[idxs[j]] = true
				mergedAny = true
			}
			if mergedAny {
				var mq Query = stripped
				if boost != 1 {
					mq = &BoostQuery{Query: stripped, Factor: boost}
				}
				replace[idxs[i]] = mq
			}
		}
	}
	if len(drop) == 0 {
		return nil
	}

	clauses := make([]BooleanClause, 0, len(q.Clauses)-len(drop))
	for i, c := range q.Clauses {
		if drop[i] {
			continue
		}
		if mq := replace[i]; mq != nil {
			c = BooleanClause{Occur: occur, Query: mq}
		}
		clauses = append(clauses, c)
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// removeMatchAllFilters drops FILTER clauses over MatchAll when another
// required clause remains: intersecting with everything changes nothing.
func removeMatchAllFilters(q *BooleanQuery) Query {
	matchAllFilters := 0
	required := 0
	for _, c := range q.Clauses {
		if c.Occur.IsRequired() {
			required++
			if c.Occur == OccurFilter {
				if _, ok := c.Query.(*MatchAllQuery); ok {
					matchAllFilters++
				}
			}
		}
	}
	if matchAllFilters == 0 || required == matchAllFilters {
		return nil
	}
	clauses := make([]BooleanClause, 0, len(q.Clauses)-matchAllFilters)
	for _, c := range q.Clauses {
		if c.Occur == OccurFilter {
			if _, ok := c.Query.(*MatchAllQuery); ok {
				continue
			}
		}
		clauses = append(clauses, c)
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// collapseMustMatchAll handles a sole MUST clause of MatchAll (optionally
// boosted by b) combined with filters: the filters alone decide the matching
// set, and the score is the constant contributed by MatchAll. The result is
// Boost(ConstantScore(filters), b). When SHOULD clauses are present they
// still carry score, so only the required part collapses.
func collapseMustMatchAll(q *BooleanQuery) Query {
	mustIdx := -1
	filters := 0
	for i, c := range q.Clauses {
		switch c.Occur {
		case OccurMust:
			if mustIdx >= 0 {
				return nil
			}
			mustIdx = i
		case OccurFilter:
			filters++
		}
	}
	if mustIdx < 0 || filters == 0 {
		return nil
	}
	stripped, boost := stripBoost(q.Clauses[mustIdx].Query)
	if _, ok := stripped.(*MatchAllQuery); !ok {
		return nil
	}

	inner := &BooleanQuery{}
	var shoulds []BooleanClause
	for i, c := range q.Clauses {
		if i == mustIdx {
			continue
		}
		switch c.Occur {
		case OccurFilter, OccurMustNot:
			inner.Clauses = append(inner.Clauses, c)
		case OccurShould:
			shoulds = append(shoulds, c)
		}
	}
	var wrapped Query = &ConstantScoreQuery{Query: inner}
	if boost != 1 {
		wrapped = &BoostQuery{Query: wrapped, Factor: boost}
	}
	if len(shoulds) == 0 {
		return wrapped
	}
	clauses := append([]BooleanClause{{Occur: OccurMust, Query: wrapped}}, shoulds...)
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// collapseShouldCount compares the number of meaningful SHOULD clauses with
// the threshold. Fewer clauses than the threshold can never satisfy it;
// exactly as many means every one of them is in fact required.
func collapseShouldCount(q *BooleanQuery) Query {
	shoulds := 0
	for _, c := range q.Clauses {
		if c.Occur == OccurShould {
			shoulds++
		}
	}
	msm := q.MinimumShouldMatch
	if msm <= 0 || shoulds > msm {
		return nil
	}
	if shoulds < msm {
		return &MatchNoneQuery{}
	}
	clauses := make([]BooleanClause, len(q.Clauses))
	for i, c := range q.Clauses {
		if c.Occur == OccurShould {
			c = BooleanClause{Occur: OccurMust, Query: c.Query}
		}
		clauses[i] = c
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: 0}
}

// flattenConjunctions splices required clauses whose query is itself a pure
// conjunction into the parent. Inner MUST clauses demote to FILTER when the
// outer clause was a FILTER (non-scoring context suppresses inner scoring);
// inner MUST_NOT clauses keep their polarity.
func flattenConjunctions(q *BooleanQuery) Query {
	changed := false
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		inner, ok := c.Query.(*BooleanQuery)
		if ok && c.Occur.IsRequired() && conjunctionFlattenable(inner) {
			for _, ic := range inner.Clauses {
				occur := ic.Occur
				if occur == OccurMust && c.Occur == OccurFilter {
					occur = OccurFilter
				}
				clauses = append(clauses, BooleanClause{Occur: occur, Query: ic.Query})
			}
			changed = true
			continue
		}
		clauses = append(clauses, c)
	}
	if !changed {
		return nil
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

// conjunctionFlattenable reports whether inner is a pure conjunction: no
// SHOULD clauses, no threshold, and at least one required clause (a
// prohibition-only inner matches nothing and must not be spliced away).
func conjunctionFlattenable(inner *BooleanQuery) bool {
	if inner.MinimumShouldMatch != 0 {
		return false
	}
	required := false
	for _, c := range inner.Clauses {
		if c.Occur == OccurShould {
			return false
		}
		if c.Occur.IsRequired() {
			required = true
		}
	}
	return required
}

// flattenShouldDisjunctions splices SHOULD clauses whose query is a pure
// disjunction (threshold at most one) into the parent disjunction. With an
// outer threshold above one the splice would change how many alternatives a
// document must satisfy, so it is skipped.
func flattenShouldDisjunctions(q *BooleanQuery) Query {
	if q.MinimumShouldMatch > 1 {
		return nil
	}
	changed := false
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		if c.Occur == OccurShould {
			if inner, ok := c.Query.(*BooleanQuery); ok && disjunctionFlattenable(inner) {
				clauses = append(clauses, inner.Clauses...)
				changed = true
				continue
			}
		}
		clauses = append(clauses, c)
	}
	if !changed {
		return nil
	}
	return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: q.MinimumShouldMatch}
}

func disjunctionFlattenable(inner *BooleanQuery) bool {
	if inner.MinimumShouldMatch > 1 || len(inner.Clauses) == 0 {
		return false
	}
	for _, c := range inner.Clauses {
		if c.Occur != OccurShould {
			return false
		}
	}
	return true
}

// flattenMustDisjunction converts a MUST clause holding a pure disjunction
// into SHOULD clauses of the parent, raising the parent threshold by the
// inner one (at least one, since the whole disjunction was mandatory). Only
// legal when the parent has no SHOULD clauses of its own: otherwise the two
// thresholds would conflate.
func flattenMustDisjunction(q *BooleanQuery) Query {
	for _, c := range q.Clauses {
		if c.Occur == OccurShould {
			return nil
		}
	}
	for i, c := range q.Clauses {
		if c.Occur != OccurMust {
			continue
		}
		inner, ok := c.Query.(*BooleanQuery)
		if !ok || len(inner.Clauses) == 0 {
			continue
		}
		pure := true
		for _, ic := range inner.Clauses {
			if ic.Occur != OccurShould {
				pure = false
				break
			}
		}
		if !pure {
			continue
		}
		msm := inner.MinimumShouldMatch
		if msm < 1 {
			msm = 1
		}
		clauses := make([]BooleanClause, 0, len(q.Clauses)-1+len(inner.Clauses))
		clauses = append(clauses, q.Clauses[:i]...)
		clauses = append(clauses, inner.Clauses...)
		clauses = append(clauses, q.Clauses[i+1:]...)
		return &BooleanQuery{Clauses: clauses, MinimumShouldMatch: msm}
	}
	return nil
}

// clauseIndex groups the queries of clauses with the given occur by hash.
func clauseIndex(q *BooleanQuery, occur Occur) map[uint64][]Query {
	idx := make(map[uint64][]Query)
	for _, c := range q.Clauses {
		if c.Occur == occur {
			idx[Hash(c.Query)] = append(idx[Hash(c.Query)], c.Query)
		}
	}
	return idx
}

func containsEqual(bucket []Query, q Query) bool {
	for _, other := range bucket {
		if Equal(q, other) {
			return true
		}
	}
	return false
}
