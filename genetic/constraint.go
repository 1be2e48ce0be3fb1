package genetic

import (
	"math"
	"math/rand/v2"
)

// ParameterBounds defines the valid range for a single gene
// Integer genes are rounded after every perturbation or clamp
type ParameterBounds struct {
	Name     string
	Min, Max float64
	Integer  bool
}

// Contains reports whether v is finite and inside the range
func (b ParameterBounds) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if b.Integer && v != math.Round(v) {
		return false
	}
	return v >= b.Min && v <= b.Max
}

// clamp pulls v into range; NaN lands on Min
func (b ParameterBounds) clamp(v float64) float64 {
	if math.IsNaN(v) || v < b.Min {
		v = b.Min
	} else if v > b.Max {
		v = b.Max
	}
	if b.Integer {
		v = math.Round(v)
		if v > b.Max {
			v = math.Floor(b.Max)
		} else if v < b.Min {
			v = math.Ceil(b.Min)
		}
	}
	return v
}

// BoundedPerturbator applies gaussian noise scaled to each gene's range, then clamps
type BoundedPerturbator struct {
	Bounds            []ParameterBounds
	StandardDeviation float64
}

// Perturb implements Perturbator for float vectors
func (bp *BoundedPerturbator) Perturb(solution *[]float64, rate float64, rng *rand.Rand) {
	if solution == nil || len(*solution) == 0 {
		return
	}

	for i := range *solution {
		if i >= len(bp.Bounds) {
			break
		}
		if rng.Float64() >= rate {
			continue
		}

		bounds := bp.Bounds[i]
		rangeSize := bounds.Max - bounds.Min
		noise := rng.NormFloat64() * bp.StandardDeviation * rangeSize
		if bounds.Integer && math.Abs(noise) < 0.5 {
			// Sub-unit noise on a tag would always round back to the parent value
			noise = math.Copysign(1, noise)
		}

		(*solution)[i] = bounds.clamp((*solution)[i] + noise)
	}
}

// Clamp enforces bounds without mutation
func (bp *BoundedPerturbator) Clamp(solution []float64) []float64 {
	result := make([]float64, len(solution))
	for i, v := range solution {
		if i >= len(bp.Bounds) {
			result[i] = v
			continue
		}
		result[i] = bp.Bounds[i].clamp(v)
	}
	return result
}
