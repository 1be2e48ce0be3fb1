// Package monitor draws a live terminal view of the generator.
//
// The driver and run loop feed it through a buffered channel; when the channel is
// full events are dropped and counted.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/redking/driver"
	"github.com/lixenwraith/redking/parameter"
	"github.com/lixenwraith/redking/runloop"
	"github.com/lixenwraith/redking/trace"
)

// ErrQuit is returned by Run when the user closes the monitor
var ErrQuit = errors.New("monitor closed by user")

type eventKind int

const (
	eventPhase eventKind = iota
	eventStep
	eventOutcome
)

type event struct {
	kind     eventKind
	phase    driver.Phase
	parasite []float64
	host     []float64
	outcome  runloop.Outcome
}

// Monitor implements driver.Observer and runloop.Observer
type Monitor struct {
	screen tcell.Screen
	events chan event
	width  int

	// view state, owned by the Run goroutine
	phase     driver.Phase
	rows      []trace.Row
	steps     int
	attempts  int
	successes int
	rejected  int
	lastID    string

	dropped atomic.Int64
}

// New creates a monitor drawing on screen; Run initializes and finalizes it
func New(screen tcell.Screen) *Monitor {
	return &Monitor{
		screen: screen,
		events: make(chan event, parameter.MonitorEventBuffer),
		width:  parameter.TraceWidth,
	}
}

func (m *Monitor) Phase(p driver.Phase) {
	m.send(event{kind: eventPhase, phase: p})
}

func (m *Monitor) Step(p driver.Phase, sim driver.Simulation) {
	m.send(event{
		kind:     eventStep,
		phase:    p,
		parasite: trace.Bucket(sim.ParasiteState(), m.width),
		host:     trace.Bucket(sim.HostState(), m.width),
	})
}

func (m *Monitor) Outcome(o runloop.Outcome) {
	m.send(event{kind: eventOutcome, outcome: o})
}

func (m *Monitor) send(ev event) {
	select {
	case m.events <- ev:
	default:
		m.dropped.Add(1)
	}
}

// Run draws until ctx ends or the user presses q, Escape or Ctrl-C
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	done := make(chan struct{})
	input := make(chan tcell.Event, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			ev := m.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case input <- ev:
			case <-done:
				return
			}
		}
	}()
	defer func() {
		close(done)
		m.screen.Fini()
		wg.Wait()
	}()

	ticker := time.NewTicker(parameter.MonitorFrameInterval)
	defer ticker.Stop()

	m.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-input:
			if !m.handleInput(ev) {
				return ErrQuit
			}
		case ev := <-m.events:
			m.apply(ev)
		case <-ticker.C:
			m.draw()
		}
	}
}

// handleInput returns false when the monitor should close
func (m *Monitor) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		m.screen.Sync()
	}
	return true
}

func (m *Monitor) apply(ev event) {
	switch ev.kind {
	case eventPhase:
		m.phase = ev.phase
		if ev.phase == driver.PhaseRestart || ev.phase == driver.PhaseWarmup {
			m.rows = m.rows[:0]
			m.steps = 0
		}
	case eventStep:
		m.phase = ev.phase
		m.steps++
		if ev.phase != driver.PhaseMainLoop {
			return
		}
		m.rows = append(m.rows, trace.Row{Parasite: ev.parasite, Host: ev.host})
		_, h := m.screen.Size()
		if keep := max(h-2, 1); len(m.rows) > keep {
			m.rows = append(m.rows[:0], m.rows[len(m.rows)-keep:]...)
		}
	case eventOutcome:
		m.attempts++
		if ev.outcome.Status == driver.StatusSuccess {
			m.successes++
			if ev.outcome.Record != nil {
				m.lastID = ev.outcome.Record.ID
			}
		} else {
			m.rejected++
		}
	}
}

var (
	headerStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	labelStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// draw renders a header line and the recent main-loop rows, parasites left, hosts right
func (m *Monitor) draw() {
	m.screen.Clear()

	header := fmt.Sprintf("redking  %-15s step %-5d runs %d  ok %d  rejected %d  dropped %d",
		m.phase, m.steps, m.attempts, m.successes, m.rejected, m.dropped.Load())
	m.drawText(0, 0, header, headerStyle)
	if m.lastID != "" {
		m.drawText(0, 1, "last: "+m.lastID, labelStyle)
	}

	peak := 0.0
	for _, row := range m.rows {
		for i := range row.Parasite {
			peak = max(peak, row.Parasite[i], row.Host[i])
		}
	}

	for y, row := range m.rows {
		for x := range row.Parasite {
			m.screen.SetContent(x, y+2, '█', nil, cellStyle(row.Parasite[x], peak, true))
			m.screen.SetContent(x+len(row.Parasite)+1, y+2, '█', nil, cellStyle(row.Host[x], peak, false))
		}
	}
	m.screen.Show()
}

func (m *Monitor) drawText(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		m.screen.SetContent(x+i, y, r, nil, style)
	}
}

func cellStyle(v, peak float64, parasite bool) tcell.Style {
	intensity := int32(0)
	if peak > 0 && v > 0 {
		intensity = int32(min(v/peak, 1) * 255)
	}
	if parasite {
		return tcell.StyleDefault.Foreground(tcell.NewRGBColor(intensity, 0, 0))
	}
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, intensity, 0))
}
