package tracking

// MetricBundle is a generic container for named metrics
// Keys are metric names, values are float64 measurements
type MetricBundle map[string]float64

// Feedback metric keys
const (
	MetricUpvotes   = "upvotes"
	MetricDownvotes = "downvotes"
)

// FeedbackBundle builds the bundle of approval signals for one record
func FeedbackBundle(upvotes, downvotes int) MetricBundle {
	return MetricBundle{
		MetricUpvotes:   float64(upvotes),
		MetricDownvotes: float64(downvotes),
	}
}

// Get returns metric value or default if not present
func (b MetricBundle) Get(key string, defaultVal float64) float64 {
	if v, ok := b[key]; ok {
		return v
	}
	return defaultVal
}
