package genetic

import (
	"math"
	"math/rand/v2"
	"testing"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestSortByScore_StableDescending(t *testing.T) {
	pool := &Pool[string, float64]{Members: []Candidate[string, float64]{
		{Data: "a", Score: 1},
		{Data: "b", Score: 3},
		{Data: "c", Score: 1},
		{Data: "d", Score: 2},
	}}

	SortByScore(pool)

	want := []string{"b", "d", "a", "c"}
	for i, m := range pool.Members {
		if m.Data != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], m.Data)
		}
	}
}

func TestScanSelector_AlwaysAcceptPicksFirst(t *testing.T) {
	pool := &Pool[string, float64]{Members: []Candidate[string, float64]{
		{Data: "best", Score: 5},
		{Data: "next", Score: 4},
	}}
	sel := &ScanSelector[string, float64]{AcceptProbability: 1}

	c, idx, ok := sel.Pick(pool, newRNG())
	if !ok {
		t.Fatal("expected acceptance")
	}
	if c.Data != "best" || idx != 0 {
		t.Errorf("expected best at 0, got %s at %d", c.Data, idx)
	}
}

func TestScanSelector_NeverAcceptExhausts(t *testing.T) {
	pool := &Pool[string, float64]{Members: []Candidate[string, float64]{
		{Data: "a"}, {Data: "b"}, {Data: "c"},
	}}
	sel := &ScanSelector[string, float64]{AcceptProbability: 0}

	if _, idx, ok := sel.Pick(pool, newRNG()); ok || idx != -1 {
		t.Errorf("expected exhausted scan, got ok=%v idx=%d", ok, idx)
	}
	if got := sel.Select(pool, 3, newRNG()); len(got) != 0 {
		t.Errorf("expected empty selection, got %d", len(got))
	}
}

func TestScanSelector_EmptyPool(t *testing.T) {
	sel := &ScanSelector[string, float64]{AcceptProbability: 1}

	if _, _, ok := sel.Pick(&Pool[string, float64]{}, newRNG()); ok {
		t.Error("empty pool must not accept")
	}
	if _, _, ok := sel.Pick(nil, newRNG()); ok {
		t.Error("nil pool must not accept")
	}
}

func TestScanSelector_PrefersTop(t *testing.T) {
	members := make([]Candidate[int, float64], 20)
	for i := range members {
		members[i] = Candidate[int, float64]{Data: i, Score: float64(20 - i)}
	}
	pool := &Pool[int, float64]{Members: members}
	sel := &ScanSelector[int, float64]{AcceptProbability: 0.1}
	rng := newRNG()

	counts := make([]int, len(members))
	for i := 0; i < 20000; i++ {
		if c, _, ok := sel.Pick(pool, rng); ok {
			counts[c.Data]++
		}
	}

	if counts[0] <= counts[5] || counts[5] <= counts[15] {
		t.Errorf("expected decreasing preference, got head=%d mid=%d tail=%d", counts[0], counts[5], counts[15])
	}
}

func TestBoundedPerturbator_StaysInBounds(t *testing.T) {
	bounds := []ParameterBounds{
		{Name: "x", Min: 0, Max: 1},
		{Name: "y", Min: -5, Max: 5},
		{Name: "tag", Min: 0, Max: 2, Integer: true},
	}
	bp := &BoundedPerturbator{Bounds: bounds, StandardDeviation: 2.0}
	rng := newRNG()

	for i := 0; i < 1000; i++ {
		genes := []float64{0.5, 0, 1}
		bp.Perturb(&genes, 1.0, rng)
		for j, g := range genes {
			if !bounds[j].Contains(g) {
				t.Fatalf("gene %s out of bounds: %v", bounds[j].Name, g)
			}
		}
	}
}

func TestBoundedPerturbator_ZeroRateIsIdentity(t *testing.T) {
	bp := &BoundedPerturbator{Bounds: []ParameterBounds{{Min: 0, Max: 1}}, StandardDeviation: 1}
	genes := []float64{0.25}

	bp.Perturb(&genes, 0, newRNG())

	if genes[0] != 0.25 {
		t.Errorf("expected unchanged gene, got %v", genes[0])
	}
}

func TestBoundedPerturbator_IntegerGeneMoves(t *testing.T) {
	bp := &BoundedPerturbator{
		Bounds:            []ParameterBounds{{Min: 0, Max: 2, Integer: true}},
		StandardDeviation: 0.01,
	}
	rng := newRNG()

	moved := false
	for i := 0; i < 50; i++ {
		genes := []float64{1}
		bp.Perturb(&genes, 1.0, rng)
		if genes[0] != 1 {
			moved = true
		}
	}
	if !moved {
		t.Error("expected tiny noise on an integer gene to still change it")
	}
}

func TestBoundedPerturbator_Clamp(t *testing.T) {
	bp := &BoundedPerturbator{Bounds: []ParameterBounds{
		{Min: 0, Max: 1},
		{Min: 0, Max: 3, Integer: true},
	}}

	got := bp.Clamp([]float64{-1, 2.6, 42})

	if got[0] != 0 {
		t.Errorf("expected 0, got %v", got[0])
	}
	if got[1] != 3 {
		t.Errorf("expected rounded 3, got %v", got[1])
	}
	if got[2] != 42 {
		t.Errorf("gene without bounds must pass through, got %v", got[2])
	}
	if nan := bp.Clamp([]float64{math.NaN()}); nan[0] != 0 {
		t.Errorf("NaN should clamp to min, got %v", nan[0])
	}
}

func TestMonteCarloInitializer_RespectsConstraints(t *testing.T) {
	bounds := []ParameterBounds{{Min: 0, Max: 10}, {Min: 0, Max: 10}}
	mci := &MonteCarloInitializer[[]float64]{
		SampleSpace: UniformSampler(bounds),
		Constraints: func(g []float64) bool { return g[0] < g[1] },
		MaxAttempts: 100,
	}
	rng := newRNG()

	for i := 0; i < 200; i++ {
		g := mci.Generate(rng)
		if g[0] >= g[1] {
			t.Fatalf("constraint violated: %v", g)
		}
	}
}

func TestUniformSampler_IntegerGenes(t *testing.T) {
	sample := UniformSampler([]ParameterBounds{{Min: 0, Max: 2, Integer: true}})
	rng := newRNG()

	seen := map[float64]bool{}
	for i := 0; i < 300; i++ {
		seen[sample(rng)[0]] = true
	}
	for _, v := range []float64{0, 1, 2} {
		if !seen[v] {
			t.Errorf("expected tag %v to be sampled", v)
		}
	}
	if len(seen) != 3 {
		t.Errorf("expected exactly 3 distinct tags, got %d", len(seen))
	}
}
