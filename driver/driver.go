// Package driver runs one generation attempt against a simulation.
//
// A run passes through WARMUP, DIVERSITY_CHECK, RESTART and MAIN_LOOP. Warmup output is
// discarded; the main loop renders one audio bar per parasite and host snapshot and
// records a trace row per micro-step. Rejection is a normal outcome reported in Result,
// not an error.
package driver

import (
	"context"

	"go.uber.org/zap"

	"github.com/lixenwraith/redking/model"
	"github.com/lixenwraith/redking/parameter"
	"github.com/lixenwraith/redking/trace"
)

// Simulation is the population model contract consumed by the driver
type Simulation interface {
	Init()
	Step()
	IsExtinct() bool
	Size() int
	ParasiteState() []float64
	HostState() []float64
}

// AudioRenderer emits one bar per call from the last snapshot given to Update
type AudioRenderer interface {
	Update(state []float64)
	Render(out []float32, cursor int) int
	Reset()
	BarLength() int
}

// TraceRenderer accumulates one row per micro-step
// The driver never saves; persisting the trace is the caller's decision
type TraceRenderer interface {
	Record(src trace.Source)
	Reset()
}

// Config sizes a run
type Config struct {
	TimeLength  int // seconds of audio
	SampleRate  int
	PreRunSteps int
	MicroSteps  int
	MinStrains  int
}

// DefaultConfig returns the standard run shape
func DefaultConfig(sampleRate int) Config {
	return Config{
		TimeLength:  parameter.RunTimeLength,
		SampleRate:  sampleRate,
		PreRunSteps: parameter.PreRunSteps,
		MicroSteps:  parameter.MicroSteps,
		MinStrains:  parameter.MinParasiteStrains,
	}
}

// BufferLength returns the number of samples a successful run produces
func (c Config) BufferLength() int {
	return c.TimeLength * c.SampleRate
}

// BarPairs returns how many parasite/host bar pairs cover the buffer
func (c Config) BarPairs(barLength int) int {
	if barLength <= 0 {
		return 0
	}
	return c.BufferLength() / barLength / 2
}

// Driver owns the renderers for consecutive runs
type Driver struct {
	cfg      Config
	audio    AudioRenderer
	trace    TraceRenderer
	pacer    Pacer
	observer Observer
	log      *zap.Logger
}

// Option configures a Driver
type Option func(*Driver)

// WithPacer sets the delay policy applied after each step
func WithPacer(p Pacer) Option {
	return func(d *Driver) { d.pacer = p }
}

// WithObserver receives phase and step notifications
func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observer = o }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates a driver; pacing defaults to none
func New(cfg Config, audio AudioRenderer, tr TraceRenderer, opts ...Option) *Driver {
	d := &Driver{
		cfg:      cfg,
		audio:    audio,
		trace:    tr,
		pacer:    NoPacing,
		observer: nopObserver{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one attempt; the returned error is non-nil only when ctx ends
func (d *Driver) Run(ctx context.Context, sim Simulation) (Result, error) {
	d.observer.Phase(PhaseWarmup)
	for range d.cfg.PreRunSteps {
		sim.Step()
		d.observer.Step(PhaseWarmup, sim)
		if err := d.pacer.Pace(ctx); err != nil {
			return Result{}, err
		}
	}

	d.observer.Phase(PhaseDiversityCheck)
	strains := model.Surviving(sim.ParasiteState())
	if strains < d.cfg.MinStrains {
		d.log.Debug("low diversity", zap.Int("strains", strains))
		return d.reject(RejectLowDiversity, 0), nil
	}

	d.observer.Phase(PhaseRestart)
	sim.Init()
	d.audio.Reset()
	d.trace.Reset()

	d.observer.Phase(PhaseMainLoop)
	out := make([]float32, d.cfg.BufferLength())
	bar := d.audio.BarLength()
	pairs := d.cfg.BarPairs(bar)
	cursor := 0
	for pair := range pairs {
		d.audio.Update(sim.ParasiteState())
		cursor += d.audio.Render(out, cursor)
		d.audio.Update(sim.HostState())
		cursor += d.audio.Render(out, cursor)

		for range d.cfg.MicroSteps {
			d.trace.Record(sim)
			sim.Step()
			d.observer.Step(PhaseMainLoop, sim)
			if sim.IsExtinct() {
				d.log.Debug("extinct", zap.Int("bar_pair", pair))
				return d.reject(RejectExtinct, pair), nil
			}
			if err := d.pacer.Pace(ctx); err != nil {
				return Result{}, err
			}
		}
	}

	d.observer.Phase(PhaseSuccess)
	return Result{
		Status:   StatusSuccess,
		Audio:    out,
		Trace:    d.trace,
		BarPairs: pairs,
	}, nil
}

func (d *Driver) reject(reason RejectReason, pairs int) Result {
	d.observer.Phase(PhaseRejected)
	return Result{Status: StatusRejected, Reason: reason, BarPairs: pairs}
}
