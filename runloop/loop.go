// Package runloop is the generator's outer loop: score, select, mutate, simulate,
// and on success encode, save, record and publish.
package runloop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/redking/audio"
	"github.com/lixenwraith/redking/constant"
	"github.com/lixenwraith/redking/cost"
	"github.com/lixenwraith/redking/driver"
	"github.com/lixenwraith/redking/evolve"
	"github.com/lixenwraith/redking/publish"
	"github.com/lixenwraith/redking/store"
	"github.com/lixenwraith/redking/trace"
)

// Mutator refines an inherited parameter set
type Mutator interface {
	Mutate(parent cost.Params) cost.Params
}

// Runner executes one simulation attempt
type Runner interface {
	Run(ctx context.Context, sim driver.Simulation) (driver.Result, error)
}

// ModelFactory builds a fresh simulation for a parameter set
type ModelFactory func(p cost.Params) driver.Simulation

// Observer is told about every finished attempt
type Observer interface {
	Outcome(o Outcome)
}

// Deps are the collaborators of a Loop
type Deps struct {
	Store     store.Store
	Tracker   *evolve.FitnessTracker
	Selector  *evolve.Selector
	Mutator   Mutator
	Recorder  *evolve.Recorder
	NewModel  ModelFactory
	Driver    Runner
	Encoder   audio.Encoder
	Publisher publish.Publisher
	// Magnify post-processes the saved trace image; defaults to trace.Magnify
	Magnify  func(path string, factor int) error
	Observer Observer
	Logger   *zap.Logger
}

// Settings are the fixed inputs of every attempt
type Settings struct {
	MediaDir    string
	SiteURL     string
	SampleRate  int
	TimeLength  int
	Magnify     int
	MaxAttempts int // 0 runs until cancelled
}

// Outcome describes one attempt
type Outcome struct {
	Attempt   int
	Origin    evolve.Origin
	Params    string
	Status    driver.Status
	Reason    driver.RejectReason
	Record    *store.RunRecord
	AudioPath string
	ImagePath string
	Elapsed   time.Duration
}

// Stats are cumulative loop counters
type Stats struct {
	Attempts   int
	Successes  int
	Errors     int
	Rejections map[driver.RejectReason]int
}

// Loop runs attempts one after another
type Loop struct {
	deps     Deps
	settings Settings
	log      *zap.Logger

	mu    sync.Mutex
	stats Stats
}

func New(deps Deps, settings Settings) *Loop {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Magnify == nil {
		deps.Magnify = trace.Magnify
	}
	return &Loop{
		deps:     deps,
		settings: settings,
		log:      deps.Logger,
		stats:    Stats{Rejections: make(map[driver.RejectReason]int)},
	}
}

// Stats returns a snapshot of the counters
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.stats
	s.Rejections = make(map[driver.RejectReason]int, len(l.stats.Rejections))
	for k, v := range l.stats.Rejections {
		s.Rejections[k] = v
	}
	return s
}

// Run repeats Attempt until ctx ends or MaxAttempts is reached
// A failed attempt is logged and skipped; cancellation returns nil
func (l *Loop) Run(ctx context.Context) error {
	for n := 0; l.settings.MaxAttempts == 0 || n < l.settings.MaxAttempts; n++ {
		if ctx.Err() != nil {
			break
		}
		o, err := l.Attempt(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			l.log.Error("attempt failed", zap.Int("attempt", o.Attempt), zap.Error(err))
			continue
		}
	}

	s := l.Stats()
	l.log.Info("run loop stopped",
		zap.Int("attempts", s.Attempts),
		zap.Int("successes", s.Successes),
		zap.Int("errors", s.Errors),
		zap.Int("rejected_low_diversity", s.Rejections[driver.RejectLowDiversity]),
		zap.Int("rejected_extinct", s.Rejections[driver.RejectExtinct]))
	return nil
}

// Attempt performs one select-simulate-publish iteration
func (l *Loop) Attempt(ctx context.Context) (Outcome, error) {
	started := time.Now()
	o := Outcome{Attempt: l.begin()}

	o, err := l.attempt(ctx, o)
	o.Elapsed = time.Since(started)

	l.mu.Lock()
	switch {
	case err != nil:
		l.stats.Errors++
	case o.Status == driver.StatusRejected:
		l.stats.Rejections[o.Reason]++
	default:
		l.stats.Successes++
	}
	l.mu.Unlock()

	if err == nil && l.deps.Observer != nil {
		l.deps.Observer.Outcome(o)
	}
	return o, err
}

func (l *Loop) begin() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.Attempts++
	return l.stats.Attempts
}

func (l *Loop) attempt(ctx context.Context, o Outcome) (Outcome, error) {
	d := l.deps

	if _, err := d.Tracker.Update(ctx); err != nil {
		return o, fmt.Errorf("update fitness: %w", err)
	}

	sel, err := d.Selector.Select(ctx)
	if err != nil {
		return o, fmt.Errorf("select: %w", err)
	}
	o.Origin = sel.Origin

	params := sel.Params
	if sel.Parent != nil {
		params = d.Mutator.Mutate(params)
	}
	o.Params = cost.Encode(params)
	base := evolve.BaseName(o.Params)

	log := l.log.With(zap.Int("attempt", o.Attempt), zap.String("base", base), zap.Stringer("origin", sel.Origin))
	log.Debug("simulating", zap.String("params", o.Params))

	res, err := d.Driver.Run(ctx, d.NewModel(params))
	if err != nil {
		return o, fmt.Errorf("simulate: %w", err)
	}
	o.Status = res.Status
	if !res.Ok() {
		o.Reason = res.Reason
		log.Info("rejected", zap.Stringer("reason", res.Reason), zap.Int("bar_pairs", res.BarPairs))
		return o, nil
	}

	if err := os.MkdirAll(l.settings.MediaDir, 0755); err != nil {
		return o, fmt.Errorf("media dir: %w", err)
	}
	basePath := filepath.Join(l.settings.MediaDir, base)

	o.AudioPath, err = d.Encoder.Encode(ctx, res.Audio, l.settings.SampleRate, basePath)
	if err != nil {
		return o, fmt.Errorf("encode audio: %w", err)
	}

	o.ImagePath = basePath + constant.ExtPNG
	if err := saveTrace(res.Trace, o.ImagePath); err != nil {
		return o, err
	}
	if err := d.Magnify(o.ImagePath, l.settings.Magnify); err != nil {
		return o, fmt.Errorf("magnify trace: %w", err)
	}

	rec, err := d.Recorder.Record(ctx, base, l.settings.TimeLength, o.Params, sel.Parent)
	if err != nil {
		return o, err
	}
	o.Record = &rec
	log.Info("run recorded", zap.String("id", rec.ID), zap.String("parent", rec.ParentID), zap.String("audio", o.AudioPath))

	msg := constant.PublishMessagePrefix + l.settings.SiteURL + rec.ID
	if err := d.Publisher.Publish(ctx, msg, o.ImagePath); err != nil {
		return o, fmt.Errorf("publish %s: %w", rec.ID, err)
	}
	return o, nil
}

type traceSaver interface {
	Save(path string) error
}

var errNoTrace = errors.New("trace renderer cannot save")

func saveTrace(tr driver.TraceRenderer, path string) error {
	saver, ok := tr.(traceSaver)
	if !ok {
		return errNoTrace
	}
	return saver.Save(path)
}
