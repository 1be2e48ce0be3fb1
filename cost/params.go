// Package cost defines the simulation cost parameters that evolve across runs,
// their serialized form, random sampling and mutation.
package cost

import (
	"github.com/lixenwraith/redking/genetic"
)

// Params configures one host–parasite run: the host and parasite trade-off curves,
// growth and harvest coefficients, starting densities and the model variant
type Params struct {
	// Host reproduction rate bounds and trade-off curvature
	AMin float64
	AMax float64
	AP   float64

	// Parasite transmission bounds and trade-off curvature
	BetMin float64
	BetMax float64
	BetaP  float64

	// G is host crowding, H is host harvest (background mortality)
	G float64
	H float64

	// Starting densities of seeded parasite and host strains
	PStart float64
	HStart float64

	// ModelType selects a model variant, integer valued
	ModelType float64
}

// Bounds are the global valid ranges, in gene order
// Random sampling, mutation and decode validation all use these
var Bounds = []genetic.ParameterBounds{
	{Name: "amin", Min: 0.5, Max: 4.0},
	{Name: "amax", Min: 2.0, Max: 8.0},
	{Name: "a_p", Min: -0.9, Max: 5.0},
	{Name: "betmin", Min: 0.1, Max: 4.0},
	{Name: "bemaxtime", Min: 2.0, Max: 25.0},
	{Name: "beta_p", Min: -0.9, Max: 5.0},
	{Name: "g", Min: 0.05, Max: 2.0},
	{Name: "h", Min: 0.05, Max: 1.5},
	{Name: "pstart", Min: 0.05, Max: 1.0},
	{Name: "hstart", Min: 0.05, Max: 1.0},
	{Name: "model_type", Min: 0, Max: 2, Integer: true},
}

// Defaults are the hand-tuned values of the reference model
var Defaults = Params{
	AMin:      1.782,
	AMax:      5.454,
	AP:        2.615,
	BetMin:    0.491,
	BetMax:    17.117,
	BetaP:     -0.434,
	G:         0.5,
	H:         0.2,
	PStart:    1.0,
	HStart:    1.0,
	ModelType: 0,
}

// genes flattens p in Bounds order
func (p Params) genes() []float64 {
	return []float64{
		p.AMin, p.AMax, p.AP,
		p.BetMin, p.BetMax, p.BetaP,
		p.G, p.H,
		p.PStart, p.HStart,
		p.ModelType,
	}
}

func fromGenes(g []float64) Params {
	return Params{
		AMin: g[0], AMax: g[1], AP: g[2],
		BetMin: g[3], BetMax: g[4], BetaP: g[5],
		G: g[6], H: g[7],
		PStart: g[8], HStart: g[9],
		ModelType: g[10],
	}
}

// InBounds reports whether every field lies inside Bounds
func (p Params) InBounds() bool {
	for i, v := range p.genes() {
		if !Bounds[i].Contains(v) {
			return false
		}
	}
	return true
}

// Viable reports whether p is in bounds and both trade-off ranges are non-degenerate
func (p Params) Viable() bool {
	return p.InBounds() && p.AMin < p.AMax && p.BetMin < p.BetMax
}

// Variant returns the integer model tag
func (p Params) Variant() int {
	return int(p.ModelType)
}
