package parameter

// Parameter Selection
const (
	// SelectRandomProbability is the chance a run starts from fresh random parameters
	SelectRandomProbability = 0.5

	// SelectAcceptProbability is the per-candidate acceptance chance while scanning
	// records best fitness first
	SelectAcceptProbability = 0.1
)

// Mutation
const (
	// MutationRate is the per-field probability of perturbation
	MutationRate = 0.5

	// MutationStdDev is the gaussian spread as a fraction of each field's range
	MutationStdDev = 0.1
)

// Fitness Weights
const (
	FitnessUpvoteWeight   = 1.0
	FitnessDownvoteWeight = -1.0
)
