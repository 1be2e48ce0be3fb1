package evolve

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/lixenwraith/redking/cost"
	"github.com/lixenwraith/redking/genetic"
	"github.com/lixenwraith/redking/parameter"
	"github.com/lixenwraith/redking/store"
)

// Origin says where a selection's parameters came from
type Origin int

const (
	// OriginRandom is a fresh draw taken on the random branch
	OriginRandom Origin = iota
	// OriginInherited carries a decoded parent to be mutated
	OriginInherited
	// OriginLegacy replaced an accepted parent whose parameters could not be decoded
	OriginLegacy
	// OriginExhausted replaced a scan that accepted nothing
	OriginExhausted
)

func (o Origin) String() string {
	switch o {
	case OriginRandom:
		return "random"
	case OriginInherited:
		return "inherited"
	case OriginLegacy:
		return "legacy"
	case OriginExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Selection is the outcome of Select; Parent is nil unless Origin is OriginInherited
type Selection struct {
	Parent *store.RunRecord
	Params cost.Params
	Origin Origin
}

// Selector picks the next run's starting parameters
type Selector struct {
	// RandomProbability is the chance of skipping the records entirely
	RandomProbability float64

	store store.Store
	scan  genetic.ScanSelector[store.RunRecord, float64]
	rng   *rand.Rand
	log   *zap.Logger
}

// NewSelector creates a selector over s; a nil rng uses an unseeded source
func NewSelector(s store.Store, rng *rand.Rand, logger *zap.Logger) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		RandomProbability: parameter.SelectRandomProbability,
		store:             s,
		scan:              genetic.ScanSelector[store.RunRecord, float64]{AcceptProbability: parameter.SelectAcceptProbability},
		rng:               rng,
		log:               logger,
	}
}

// SetAcceptProbability sets the per-record acceptance chance of the scan
func (s *Selector) SetAcceptProbability(p float64) {
	s.scan.AcceptProbability = p
}

// Select returns a parent and its parameters, or fresh random parameters
// Only store failures are returned as errors
func (s *Selector) Select(ctx context.Context) (Selection, error) {
	if s.rng.Float64() < s.RandomProbability {
		return s.random(OriginRandom), nil
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("list records: %w", err)
	}

	pool := rankedPool(records)
	picked, _, ok := s.scan.Pick(pool, s.rng)
	if !ok {
		s.log.Debug("selection scan exhausted", zap.Int("records", len(records)))
		return s.random(OriginExhausted), nil
	}

	parent := picked.Data
	params, err := cost.Decode(parent.Params)
	if err != nil {
		s.log.Warn("unusable legacy parameters",
			zap.String("id", parent.ID),
			zap.Error(err))
		return s.random(OriginLegacy), nil
	}

	return Selection{Parent: &parent, Params: params, Origin: OriginInherited}, nil
}

func (s *Selector) random(origin Origin) Selection {
	return Selection{Params: cost.Random(s.rng), Origin: origin}
}

// rankedPool orders records by fitness, best first, newest first among equals
func rankedPool(records []store.RunRecord) *genetic.Pool[store.RunRecord, float64] {
	pool := &genetic.Pool[store.RunRecord, float64]{
		Members: make([]genetic.Candidate[store.RunRecord, float64], len(records)),
	}
	// records arrive in creation order; reversing before the stable sort puts newer first
	for i, rec := range records {
		pool.Members[len(records)-1-i] = genetic.Candidate[store.RunRecord, float64]{Data: rec, Score: rec.Fitness}
	}
	genetic.SortByScore(pool)
	return pool
}
