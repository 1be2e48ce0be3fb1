// Package genetic provides the generic building blocks for evolutionary search
// 1. Has zero knowledge of the simulation or record types it is applied to
// 2. Candidates carry an arbitrary payload with a numeric score
// 3. Randomness is always injected as *rand.Rand
package genetic

import (
	"math/rand/v2"
	"sort"
)

// SortByScore orders members best score first; ties keep their input order
func SortByScore[S Solution, F Numeric](pool *Pool[S, F]) {
	sort.SliceStable(pool.Members, func(i, j int) bool {
		return pool.Members[i].Score > pool.Members[j].Score
	})
}

// ScanSelector walks a pool in its current order and accepts each member
// independently with AcceptProbability
// Scanning a score-sorted pool gives a geometric preference for the top without
// normalizing weights over the whole population
type ScanSelector[S Solution, F Numeric] struct {
	AcceptProbability float64
}

// Pick returns the first accepted member and its position
// ok is false when the scan reaches the end without accepting anything
func (ss *ScanSelector[S, F]) Pick(pool *Pool[S, F], rng *rand.Rand) (c Candidate[S, F], index int, ok bool) {
	if pool == nil {
		return c, -1, false
	}
	for i, m := range pool.Members {
		if rng.Float64() < ss.AcceptProbability {
			return m, i, true
		}
	}
	return c, -1, false
}

// Select implements Selector with one full scan per requested candidate
// Scans that accept nothing are not retried, so the result may be short
func (ss *ScanSelector[S, F]) Select(pool *Pool[S, F], size int, rng *rand.Rand) []Candidate[S, F] {
	selected := make([]Candidate[S, F], 0, size)
	for i := 0; i < size; i++ {
		if c, _, ok := ss.Pick(pool, rng); ok {
			selected = append(selected, c)
		}
	}
	return selected
}
