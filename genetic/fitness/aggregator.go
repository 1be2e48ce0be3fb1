package fitness

import (
	"github.com/lixenwraith/redking/genetic/tracking"
	"github.com/lixenwraith/redking/parameter"
)

// Aggregator calculates fitness score from collected metrics
type Aggregator interface {
	Calculate(metrics tracking.MetricBundle) float64
}

// WeightedAggregator calculates fitness as weighted sum of metrics
// Metrics absent from the bundle contribute nothing
type WeightedAggregator struct {
	Weights map[string]float64
}

func (a *WeightedAggregator) Calculate(metrics tracking.MetricBundle) float64 {
	var fitness float64
	for key, weight := range a.Weights {
		raw, ok := metrics[key]
		if !ok {
			continue
		}
		fitness += weight * raw
	}
	return fitness
}

// NetApproval scores a record as upvotes minus downvotes
func NetApproval() *WeightedAggregator {
	return &WeightedAggregator{
		Weights: map[string]float64{
			tracking.MetricUpvotes:   parameter.FitnessUpvoteWeight,
			tracking.MetricDownvotes: parameter.FitnessDownvoteWeight,
		},
	}
}
