package genetic

import (
	"math/rand/v2"
)

// --- Core Type Constraints ---

// Solution represents any type that can be used as a solution encoding
type Solution any

// Numeric constrains types to numeric values for fitness scores
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// --- Core Data Structures ---

// Candidate represents a potential solution with its evaluated quality score
// S is the solution type, F is the fitness/quality score type
type Candidate[S Solution, F Numeric] struct {
	// Data holds the solution, or a handle to where it lives
	Data S
	// Score represents the quality/fitness of this solution (higher = better)
	Score F
}

// Pool represents a collection of solution candidates
type Pool[S Solution, F Numeric] struct {
	Members []Candidate[S, F]
}

// --- Core Operators as Interfaces ---

// Selector chooses at most size candidates from the pool
// Returning fewer than size is valid; callers decide how to fill the gap
type Selector[S Solution, F Numeric] interface {
	Select(pool *Pool[S, F], size int, rng *rand.Rand) []Candidate[S, F]
}

// Perturbator defines the mutation operator for introducing variation
type Perturbator[S Solution] interface {
	// Perturb modifies a solution in-place; rate is the per-gene probability (0-1)
	Perturb(solution *S, rate float64, rng *rand.Rand)
}

// Codec translates between genotype (evolvable) and phenotype (usable) representations
// Decode fails on genomes that cannot describe a valid phenotype
type Codec[G Solution, P any] interface {
	Encode(P) G
	Decode(G) (P, error)
	Clamp(G) G
}
