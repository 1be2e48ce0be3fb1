package model

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lixenwraith/redking/constant"
	"github.com/lixenwraith/redking/cost"
)

func newTestModel(p cost.Params) *Model {
	return New(p, rand.New(rand.NewPCG(42, 24)))
}

func TestNew_SeedsPopulation(t *testing.T) {
	m := newTestModel(cost.Defaults)

	if m.Size() != constant.ModelStrains {
		t.Fatalf("expected %d strains, got %d", constant.ModelStrains, m.Size())
	}
	if m.IsExtinct() {
		t.Fatal("fresh model must not be extinct")
	}
	if n := Surviving(m.ParasiteState()); n < 1 || n > constant.ModelSeedStrains {
		t.Errorf("expected 1..%d seeded parasite strains, got %d", constant.ModelSeedStrains, n)
	}
	if n := Surviving(m.HostState()); n < 1 || n > constant.ModelSeedStrains {
		t.Errorf("expected 1..%d seeded host strains, got %d", constant.ModelSeedStrains, n)
	}
}

func TestStep_StatesStayFiniteAndNonNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for trial := 0; trial < 10; trial++ {
		m := New(cost.Random(rng), rng)
		for i := 0; i < 200 && !m.IsExtinct(); i++ {
			m.Step()
			for _, state := range [][]float64{m.ParasiteState(), m.HostState()} {
				for j, v := range state {
					if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
						t.Fatalf("trial %d step %d strain %d: invalid density %v", trial, i, j, v)
					}
				}
			}
		}
	}
}

func TestInit_ResetsSteps(t *testing.T) {
	m := newTestModel(cost.Defaults)
	for i := 0; i < 5; i++ {
		m.Step()
	}
	if m.Steps() == 0 && !m.IsExtinct() {
		t.Fatal("expected steps to advance")
	}

	m.Init()

	if m.Steps() != 0 {
		t.Errorf("expected steps reset, got %d", m.Steps())
	}
	if m.IsExtinct() {
		t.Error("reinitialized model must not be extinct")
	}
}

func TestStep_ExtinctIsNoOp(t *testing.T) {
	m := newTestModel(cost.Defaults)
	for i := range m.y {
		for j := range m.y[i] {
			m.y[i][j] = 0
		}
	}

	if !m.IsExtinct() {
		t.Fatal("model without parasites must be extinct")
	}
	m.Step()
	if m.Steps() != 0 {
		t.Error("extinct model must not advance")
	}
}

func TestStates_AreCopies(t *testing.T) {
	m := newTestModel(cost.Defaults)

	ps := m.ParasiteState()
	for i := range ps {
		ps[i] = -1
	}

	for _, v := range m.ParasiteState() {
		if v < 0 {
			t.Fatal("mutating a snapshot must not change the model")
		}
	}
}

func TestSurviving(t *testing.T) {
	tests := []struct {
		state []float64
		want  int
	}{
		{nil, 0},
		{[]float64{0, 0, 0}, 0},
		{[]float64{0, 0.5, 0}, 1},
		{[]float64{1, 0, 2, 3}, 3},
	}
	for _, tt := range tests {
		if got := Surviving(tt.state); got != tt.want {
			t.Errorf("Surviving(%v) = %d, want %d", tt.state, got, tt.want)
		}
	}
}

func TestVariant_OutOfRangeFallsBack(t *testing.T) {
	p := cost.Defaults
	p.ModelType = 9
	m := newTestModel(p)

	if m.variant() != variants[0] {
		t.Error("unknown model type should use the base variant")
	}
}
