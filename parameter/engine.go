package parameter

import "time"

// Simulation Driver
const (
	// PreRunSteps is the warmup length before the diversity check
	PreRunSteps = 100

	// MicroSteps is simulation steps advanced per bar-pair
	MicroSteps = 20

	// StepPacing throttles every simulation step so a run can be watched live
	StepPacing = 300 * time.Millisecond

	// MinParasiteStrains below this count the warmup is rejected as a monoculture
	MinParasiteStrains = 2
)

// Trace
const (
	// TraceWidth is the number of columns per trace row
	TraceWidth = 10

	// TraceMagnify is the nearest-neighbour scale applied to the saved image
	TraceMagnify = 6
)

// Storage and output
const (
	DefaultStoreKind = "sqlite"
	DefaultStorePath = "redking.db"
	DefaultMediaDir  = "media/sim"
	DefaultSiteURL   = "http://redking.fo.am/sim/"
)

// Publishing
const (
	PublishTimeout     = 30 * time.Second
	PublishMaxAttempts = 4
)

// Monitor
const (
	// MonitorEventBuffer is the capacity of the observer channel; events are dropped when full
	MonitorEventBuffer = 512

	// MonitorFrameInterval is the redraw cadence
	MonitorFrameInterval = 100 * time.Millisecond
)
