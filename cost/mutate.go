package cost

import (
	"math/rand/v2"

	"github.com/lixenwraith/redking/genetic"
	"github.com/lixenwraith/redking/parameter"
)

// randomAttempts bounds rejection sampling of viable parameter sets
const randomAttempts = 64

var codec genetic.Codec[[]float64, Params] = GeneCodec{}

func perturbator(stdDev float64) *genetic.BoundedPerturbator {
	return &genetic.BoundedPerturbator{Bounds: Bounds, StandardDeviation: stdDev}
}

// Random draws a fresh viable parameter set uniformly within Bounds
func Random(rng *rand.Rand) Params {
	mci := genetic.MonteCarloInitializer[[]float64]{
		SampleSpace: genetic.UniformSampler(Bounds),
		Constraints: func(g []float64) bool { return fromGenes(g).Viable() },
		MaxAttempts: randomAttempts,
	}
	p, err := codec.Decode(mci.Generate(rng))
	if err != nil || !p.Viable() {
		return Defaults
	}
	return p
}

// Mutator perturbs a parent parameter set into a child candidate
type Mutator struct {
	Rate   float64
	StdDev float64
	rng    *rand.Rand
}

// NewMutator creates a mutator with default rate and spread
// A nil rng uses an unseeded source
func NewMutator(rng *rand.Rand) *Mutator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Mutator{
		Rate:   parameter.MutationRate,
		StdDev: parameter.MutationStdDev,
		rng:    rng,
	}
}

// Mutate returns a viable child of parent
// Children that break a trade-off ordering are redrawn; after randomAttempts
// failures the clamped parent is returned unchanged
func (m *Mutator) Mutate(parent Params) Params {
	bp := perturbator(m.StdDev)
	base := codec.Clamp(codec.Encode(parent))

	for attempt := 0; attempt < randomAttempts; attempt++ {
		genes := append([]float64(nil), base...)
		bp.Perturb(&genes, m.Rate, m.rng)
		child, err := codec.Decode(genes)
		if err == nil && child.Viable() {
			return child
		}
	}

	if p, err := codec.Decode(base); err == nil && p.Viable() {
		return p
	}
	return Random(m.rng)
}
