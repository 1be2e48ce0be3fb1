package driver

import (
	"context"
	"time"
)

// Status is the outcome of a run
type Status int

const (
	StatusSuccess Status = iota
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RejectReason explains a rejected run
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectLowDiversity
	RejectExtinct
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectLowDiversity:
		return "low_diversity"
	case RejectExtinct:
		return "extinct"
	default:
		return "unknown"
	}
}

// Result is either a success carrying the audio buffer and trace, or a rejection with its reason
type Result struct {
	Status   Status
	Reason   RejectReason
	Audio    []float32
	Trace    TraceRenderer
	BarPairs int // completed on success, reached on extinction
}

// Ok reports whether the run succeeded
func (r Result) Ok() bool {
	return r.Status == StatusSuccess
}

// Phase is a driver state
type Phase int

const (
	PhaseWarmup Phase = iota
	PhaseDiversityCheck
	PhaseRestart
	PhaseMainLoop
	PhaseSuccess
	PhaseRejected
)

var phaseNames = [...]string{"warmup", "diversity_check", "restart", "main_loop", "success", "rejected"}

func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Observer is notified of phase transitions and every simulation step
// Calls happen on the driver goroutine and must not block
type Observer interface {
	Phase(p Phase)
	Step(p Phase, sim Simulation)
}

type nopObserver struct{}

func (nopObserver) Phase(Phase)            {}
func (nopObserver) Step(Phase, Simulation) {}

// Pacer throttles the loop after each step
type Pacer interface {
	Pace(ctx context.Context) error
}

// PacerFunc adapts a function to Pacer
type PacerFunc func(ctx context.Context) error

func (f PacerFunc) Pace(ctx context.Context) error { return f(ctx) }

// NoPacing only checks for cancellation
var NoPacing Pacer = PacerFunc(func(ctx context.Context) error { return ctx.Err() })

// SleepPacer waits d after each step, returning early when ctx ends
func SleepPacer(d time.Duration) Pacer {
	if d <= 0 {
		return NoPacing
	}
	return PacerFunc(func(ctx context.Context) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	})
}
