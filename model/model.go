// Package model implements the host–parasite coevolution model that drives a run.
//
// Hosts and parasites each sit on a ladder of trait values. Host reproduction and
// parasite transmission follow trade-off curves set by cost.Params, infection success
// depends on the distance between host and parasite traits, and every step one strain
// leaks a tenth of its density to a neighbouring trait.
package model

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/redking/constant"
	"github.com/lixenwraith/redking/cost"
)

const (
	// extinctionThreshold zeroes any density that falls below it after a step
	extinctionThreshold = 1e-4

	// integration window per Step and the RK4 substeps inside it
	stepSpan     = 0.2
	stepSubsteps = 20

	// mutationLeak is the share of a strain copied to its neighbour
	mutationLeak = 0.1

	// virulence is extra mortality of infected hosts
	virulence = 0.5
)

// variant holds the per-model-type switches
type variant struct {
	recovery     float64 // infected hosts returning to susceptible
	hostMutation float64 // probability that hosts, not parasites, mutate
	fecundity    float64 // relative reproduction of infected hosts
}

var variants = [...]variant{
	{recovery: 1.0, hostMutation: 0.5, fecundity: 0.0},
	{recovery: 0.0, hostMutation: 0.5, fecundity: 0.0},
	{recovery: 1.0, hostMutation: 0.25, fecundity: 0.5},
}

// Model is a single host–parasite population
// Not safe for concurrent use
type Model struct {
	params cost.Params
	rng    *rand.Rand
	n      int

	u, v []float64   // host and parasite trait ladders
	a    []float64   // host reproduction per trait
	beta []float64   // parasite transmission per trait
	e    [][]float64 // infection matrix, host x parasite

	x []float64   // susceptible hosts
	y [][]float64 // infected hosts, host x parasite

	// integration scratch
	k    [4]state
	load []float64
	step int
}

type state struct {
	x []float64
	y [][]float64
}

func newState(n int) state {
	s := state{x: make([]float64, n), y: make([][]float64, n)}
	for i := range s.y {
		s.y[i] = make([]float64, n)
	}
	return s
}

// New builds a model for p; call Init before stepping
// A nil rng uses an unseeded source
func New(p cost.Params, rng *rand.Rand) *Model {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	n := constant.ModelStrains
	m := &Model{
		params: p,
		rng:    rng,
		n:      n,
		u:      make([]float64, n),
		v:      make([]float64, n),
		a:      make([]float64, n),
		beta:   make([]float64, n),
		e:      make([][]float64, n),
		load:   make([]float64, n),
	}
	for i := range m.e {
		m.e[i] = make([]float64, n)
	}
	for i := range m.k {
		m.k[i] = newState(n)
	}
	m.updateCostFunctions()
	m.Init()
	return m
}

// Init reseeds the population with random host/parasite pairs
func (m *Model) Init() {
	m.x = make([]float64, m.n)
	m.y = make([][]float64, m.n)
	for i := range m.y {
		m.y[i] = make([]float64, m.n)
	}
	for i := 0; i < constant.ModelSeedStrains; i++ {
		h := m.rng.IntN(m.n)
		p := m.rng.IntN(m.n)
		m.x[h] = m.params.HStart
		m.y[h][p] = m.params.PStart
	}
	m.step = 0
}

func (m *Model) updateCostFunctions() {
	p := m.params
	span := constant.ModelTraitMax - constant.ModelTraitMin
	for i := 0; i < m.n; i++ {
		t := float64(i) / float64(m.n-1)
		m.u[i] = constant.ModelTraitMin + span*t
		m.v[i] = constant.ModelTraitMin + span*t
		// Trade-off curves: t runs from the cheap to the expensive end of each ladder
		m.a[i] = p.AMax - (p.AMax-p.AMin)*(1-t)/(1+p.AP*t)
		m.beta[i] = p.BetMax - (p.BetMax-p.BetMin)*(1-t)/(1+p.BetaP*t)
	}
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			m.e[i][j] = m.beta[j] * (1 - 1/(1+math.Exp(-2*(m.u[i]-m.v[j]))))
		}
	}
}

// Step advances the population one generation
func (m *Model) Step() {
	if m.IsExtinct() {
		return
	}
	dt := stepSpan / stepSubsteps
	for s := 0; s < stepSubsteps; s++ {
		m.rk4(dt)
	}
	m.prune()
	m.mutate()
	m.step++
}

// IsExtinct reports whether either hosts or parasites are gone
func (m *Model) IsExtinct() bool {
	parasites := sumMatrix(m.y)
	hosts := sum(m.x) + parasites
	return hosts <= 0 || parasites <= 0
}

// Size returns the number of strains on each ladder
func (m *Model) Size() int {
	return m.n
}

// Steps returns the number of steps since the last Init
func (m *Model) Steps() int {
	return m.step
}

// ParasiteState returns parasite density per parasite trait
func (m *Model) ParasiteState() []float64 {
	out := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out[j] += m.y[i][j]
		}
	}
	return out
}

// HostState returns total host density (susceptible and infected) per host trait
func (m *Model) HostState() []float64 {
	out := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		out[i] = m.x[i] + sum(m.y[i])
	}
	return out
}

// derivatives writes d/dt of (x, y) into out
func (m *Model) derivatives(x []float64, y [][]float64, out state) {
	vr := m.variant()
	total := sum(x) + sumMatrix(y)

	// parasite load per parasite trait
	load := m.load
	for j := range load {
		load[j] = 0
	}
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			load[j] += y[i][j]
		}
	}

	crowd := math.Max(0, 1-m.params.G*total)
	for i := 0; i < m.n; i++ {
		infected := sum(y[i])
		births := m.a[i] * (x[i] + vr.fecundity*infected) * crowd
		force := 0.0
		for j := 0; j < m.n; j++ {
			force += m.e[i][j] * load[j]
		}
		out.x[i] = births - m.params.H*x[i] - force*x[i] + vr.recovery*infected
		for j := 0; j < m.n; j++ {
			out.y[i][j] = m.e[i][j]*x[i]*load[j] - (virulence+m.params.H+vr.recovery)*y[i][j]
		}
	}
}

func (m *Model) rk4(dt float64) {
	m.derivatives(m.x, m.y, m.k[0])
	m.derivatives(m.offset(m.k[0], dt/2, 1))
	m.derivatives(m.offset(m.k[1], dt/2, 2))
	m.derivatives(m.offset(m.k[2], dt, 3))

	for i := 0; i < m.n; i++ {
		m.x[i] += dt / 6 * (m.k[0].x[i] + 2*m.k[1].x[i] + 2*m.k[2].x[i] + m.k[3].x[i])
		for j := 0; j < m.n; j++ {
			m.y[i][j] += dt / 6 * (m.k[0].y[i][j] + 2*m.k[1].y[i][j] + 2*m.k[2].y[i][j] + m.k[3].y[i][j])
		}
	}
}

// offset returns the intermediate state x + h*k, floored at zero, with k[next] as output slot
func (m *Model) offset(k state, h float64, next int) ([]float64, [][]float64, state) {
	xs := make([]float64, m.n)
	ys := make([][]float64, m.n)
	for i := 0; i < m.n; i++ {
		xs[i] = math.Max(0, m.x[i]+h*k.x[i])
		ys[i] = make([]float64, m.n)
		for j := 0; j < m.n; j++ {
			ys[i][j] = math.Max(0, m.y[i][j]+h*k.y[i][j])
		}
	}
	return xs, ys, m.k[next]
}

// prune zeroes densities under the extinction threshold
func (m *Model) prune() {
	for i := 0; i < m.n; i++ {
		if m.x[i] < extinctionThreshold || math.IsNaN(m.x[i]) {
			m.x[i] = 0
		}
		for j := 0; j < m.n; j++ {
			if m.y[i][j] < extinctionThreshold || math.IsNaN(m.y[i][j]) {
				m.y[i][j] = 0
			}
		}
	}
}

// mutate picks a strain weighted by density and leaks part of it to a neighbour trait
func (m *Model) mutate() {
	hosts := m.rng.Float64() < m.variant().hostMutation

	weights := m.ParasiteState()
	if hosts {
		weights = m.HostState()
	}
	total := sum(weights)
	if total <= 0 {
		return
	}

	r := m.rng.Float64() * total
	mutator := len(weights) - 1
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r < cum {
			mutator = i
			break
		}
	}

	target := mutator + 1
	if m.rng.Float64() < 0.5 {
		target = mutator - 1
	}
	if target < 0 || target >= m.n {
		return
	}

	if hosts {
		m.x[target] += m.x[mutator] * mutationLeak
		for j := 0; j < m.n; j++ {
			m.y[target][j] += m.y[mutator][j] * mutationLeak
		}
		return
	}
	for i := 0; i < m.n; i++ {
		m.y[i][target] += m.y[i][mutator] * mutationLeak
	}
}

func (m *Model) variant() variant {
	t := m.params.Variant()
	if t < 0 || t >= len(variants) {
		t = 0
	}
	return variants[t]
}

// Surviving counts strains with positive density
func Surviving(state []float64) int {
	n := 0
	for _, v := range state {
		if v > 0 {
			n++
		}
	}
	return n
}

func sum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

func sumMatrix(m [][]float64) float64 {
	s := 0.0
	for _, row := range m {
		s += sum(row)
	}
	return s
}
