// Package evolve holds the search side of the generator: scoring past runs,
// choosing a parent parameter set and recording new runs with their lineage.
package evolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lixenwraith/redking/genetic/fitness"
	"github.com/lixenwraith/redking/genetic/tracking"
	"github.com/lixenwraith/redking/store"
)

// FitnessTracker recomputes record fitness from accumulated feedback
type FitnessTracker struct {
	store      store.Store
	aggregator fitness.Aggregator
	log        *zap.Logger
}

// NewFitnessTracker scores records as upvotes minus downvotes
func NewFitnessTracker(s store.Store, logger *zap.Logger) *FitnessTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FitnessTracker{store: s, aggregator: fitness.NetApproval(), log: logger}
}

// Score returns the fitness a record should carry
func (ft *FitnessTracker) Score(rec store.RunRecord) float64 {
	return ft.aggregator.Calculate(tracking.FeedbackBundle(rec.Upvotes, rec.Downvotes))
}

// Update rewrites every record whose stored fitness differs from its score
// and returns how many were rewritten
func (ft *FitnessTracker) Update(ctx context.Context) (int, error) {
	records, err := ft.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	changed := 0
	for _, rec := range records {
		score := ft.Score(rec)
		if score == rec.Fitness {
			continue
		}
		if err := ft.store.UpdateFitness(ctx, rec.ID, score); err != nil {
			return changed, fmt.Errorf("update fitness %s: %w", rec.ID, err)
		}
		ft.log.Debug("fitness updated",
			zap.String("id", rec.ID),
			zap.Float64("from", rec.Fitness),
			zap.Float64("to", score))
		changed++
	}
	return changed, nil
}
