package query

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Equal reports structural equality of two query trees. Boolean clause
// sequences compare as order-independent multisets: rewriting is allowed to
// reorder clauses, so two queries that differ only in clause order match the
// same documents with the same scores.
func Equal(a, b Query) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case *TermQuery:
		bv := b.(*TermQuery)
		return av.Field == bv.Field && av.Term == bv.Term
	case *PhraseQuery:
		bv := b.(*PhraseQuery)
		if av.Field != bv.Field || av.Slop != bv.Slop || len(av.Terms) != len(bv.Terms) {
			return false
		}
		for i := range av.Terms {
			if av.Terms[i] != bv.Terms[i] {
				return false
			}
		}
		return true
	case *PrefixQuery:
		bv := b.(*PrefixQuery)
		return av.Field == bv.Field && av.Prefix == bv.Prefix
	case *BoostQuery:
		bv := b.(*BoostQuery)
		return av.Factor == bv.Factor && Equal(av.Query, bv.Query)
	case *ConstantScoreQuery:
		bv := b.(*ConstantScoreQuery)
		return Equal(av.Query, bv.Query)
	case *MatchAllQuery, *MatchNoneQuery:
		return true
	case *BooleanQuery:
		bv := b.(*BooleanQuery)
		return booleanEqual(av, bv)
	default:
		// Opaque leaf kinds from outside this package compare by identity
		// only, which the a == b fast path above already covered.
		return false
	}
}

func booleanEqual(a, b *BooleanQuery) bool {
	if a.MinimumShouldMatch != b.MinimumShouldMatch || len(a.Clauses) != len(b.Clauses) {
		return false
	}
	// Hash-guided multiset matching: group the right side by clause hash,
	// then consume one structural match per left clause.
	remaining := make(map[uint64][]BooleanClause, len(b.Clauses))
	for _, c := range b.Clauses {
		h := clauseHash(c)
		remaining[h] = append(remaining[h], c)
	}
	for _, c := range a.Clauses {
		h := clauseHash(c)
		bucket := remaining[h]
		found := -1
		for i, other := range bucket {
			if other.Occur == c.Occur && Equal(c.Query, other.Query) {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		bucket[found] = bucket[len(bucket)-1]
		remaining[h] = bucket[:len(bucket)-1]
	}
	return true
}

// Hash returns a canonical 64-bit hash consistent with Equal: equal trees
// hash equal regardless of boolean clause order.
func Hash(q Query) uint64 {
	var buf [16]byte
	switch v := q.(type) {
	case *TermQuery:
		d := xxhash.New()
		writeTag(d, byte(QueryTypeTerm))
		writeString(d, v.Field)
		writeString(d, v.Term)
		return d.Sum64()
	case *PhraseQuery:
		d := xxhash.New()
		writeTag(d, byte(QueryTypePhrase))
		writeString(d, v.Field)
		binary.LittleEndian.PutUint64(buf[:8], uint64(v.Slop))
		_, _ = d.Write(buf[:8])
		for _, t := range v.Terms {
			writeString(d, t)
		}
		return d.Sum64()
	case *PrefixQuery:
		d := xxhash.New()
		writeTag(d, byte(QueryTypePrefix))
		writeString(d, v.Field)
		writeString(d, v.Prefix)
		return d.Sum64()
	case *BoostQuery:
		d := xxhash.New()
		writeTag(d, byte(QueryTypeBoost))
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v.Factor))
		binary.LittleEndian.PutUint64(buf[4:12], Hash(v.Query))
		_, _ = d.Write(buf[:12])
		return d.Sum64()
	case *ConstantScoreQuery:
		d := xxhash.New()
		writeTag(d, byte(QueryTypeConstantScore))
		binary.LittleEndian.PutUint64(buf[:8], Hash(v.Query))
		_, _ = d.Write(buf[:8])
		return d.Sum64()
	case *MatchAllQuery:
		return xxhash.Sum64String("match_all")
	case *MatchNoneQuery:
		return xxhash.Sum64String("match_none")
	case *BooleanQuery:
		// Clause hashes are summed so the result is order-independent.
		var sum uint64
		for _, c := range v.Clauses {
			sum += clauseHash(c)
		}
		d := xxhash.New()
		writeTag(d, byte(QueryTypeBoolean))
		binary.LittleEndian.PutUint64(buf[:8], uint64(v.MinimumShouldMatch))
		binary.LittleEndian.PutUint64(buf[8:16], sum)
		_, _ = d.Write(buf[:16])
		binary.LittleEndian.PutUint64(buf[:8], uint64(len(v.Clauses)))
		_, _ = d.Write(buf[:8])
		return d.Sum64()
	default:
		return xxhash.Sum64String("opaque")
	}
}

func clauseHash(c BooleanClause) uint64 {
	var buf [9]byte
	buf[0] = byte(c.Occur)
	binary.LittleEndian.PutUint64(buf[1:], Hash(c.Query))
	return xxhash.Sum64(buf[:])
}

func writeTag(d *xxhash.Digest, t byte) {
	_, _ = d.Write([]byte{t})
}

func writeString(d *xxhash.Digest, s string) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	_, _ = d.Write(n[:])
	_, _ = d.WriteString(s)
}

// stripBoost unwraps a chain of boost wrappers, returning the innermost
// query and the product of the factors (1 when q is not boosted).
func stripBoost(q Query) (Query, float32) {
	factor := float32(1)
	for {
		b, ok := q.(*BoostQuery)
		if !ok {
			return q, factor
		}
		factor *= b.Factor
		q = b.Query
	}
}

// hashIgnoringBoost hashes the boost-stripped form of q. Deduplication
// groups candidate clauses by this hash so merge rules run in near-linear
// time over large clause lists.
func hashIgnoringBoost(q Query) uint64 {
	stripped, _ := stripBoost(q)
	return Hash(stripped)
}

// equalIgnoringBoost compares two queries modulo an outer boost wrapper.
func equalIgnoringBoost(a, b Query) bool {
	sa, _ := stripBoost(a)
	sb, _ := stripBoost(b)
	return Equal(sa, sb)
}
