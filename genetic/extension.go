package genetic

import (
	"math"
	"math/rand/v2"
)

// MonteCarloInitializer creates random solutions by rejection sampling
type MonteCarloInitializer[S Solution] struct {
	// SampleSpace draws one unconstrained solution
	SampleSpace func(rng *rand.Rand) S
	// Constraints defines validity checks for generated solutions
	Constraints func(solution S) bool
	// MaxAttempts limits retry attempts for constraint satisfaction
	MaxAttempts int
}

// Generate creates a solution using Monte Carlo sampling
// When no sample satisfies the constraints the last draw is returned
func (mci *MonteCarloInitializer[S]) Generate(rng *rand.Rand) S {
	var candidate S
	for attempt := 0; attempt < max(mci.MaxAttempts, 1); attempt++ {
		candidate = mci.SampleSpace(rng)
		if mci.Constraints == nil || mci.Constraints(candidate) {
			return candidate
		}
	}
	return candidate
}

// UniformSampler returns a SampleSpace drawing each gene uniformly within its bounds
func UniformSampler(bounds []ParameterBounds) func(rng *rand.Rand) []float64 {
	return func(rng *rand.Rand) []float64 {
		genes := make([]float64, len(bounds))
		for i, b := range bounds {
			if b.Integer {
				lo, hi := int(math.Ceil(b.Min)), int(math.Floor(b.Max))
				genes[i] = float64(lo + rng.IntN(hi-lo+1))
				continue
			}
			genes[i] = b.Min + rng.Float64()*(b.Max-b.Min)
		}
		return genes
	}
}
