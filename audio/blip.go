package audio

import (
	"time"

	"github.com/lixenwraith/redking/parameter"
)

// Blip is one audible strain in the current snapshot
type Blip struct {
	Strain   int
	Freq     float64
	Velocity float64 // 0.0-1.0, relative to the loudest strain
}

// BlipRenderer sonifies population snapshots one bar at a time
// Each surviving strain becomes a ping on a pentatonic ladder; a bar plays the
// current blips as an arpeggio in strain order
type BlipRenderer struct {
	rate      int
	barLength int
	baseNote  int
	gain      float64
	attack    time.Duration
	release   time.Duration

	blips []Blip
}

// NewBlipRenderer creates a renderer emitting bars of the given duration at rate
func NewBlipRenderer(rate int, bar time.Duration) *BlipRenderer {
	return &BlipRenderer{
		rate:      rate,
		barLength: max(durationToSamples(bar, rate), 1),
		baseNote:  parameter.BlipBaseNote,
		gain:      parameter.BlipGain,
		attack:    parameter.BlipAttack,
		release:   parameter.BlipRelease,
	}
}

// BarLength returns samples per rendered bar
func (r *BlipRenderer) BarLength() int {
	return r.barLength
}

// Update replaces the blips from a state snapshot
func (r *BlipRenderer) Update(state []float64) {
	r.blips = r.blips[:0]

	peak := 0.0
	for _, v := range state {
		peak = max(peak, v)
	}
	if peak <= 0 {
		return
	}

	for i, v := range state {
		vel := v / peak
		if v <= 0 || vel < parameter.BlipMinVelocity {
			continue
		}
		r.blips = append(r.blips, Blip{
			Strain:   i,
			Freq:     NoteFreq(ScaleNote(r.baseNote, i)),
			Velocity: vel,
		})
	}
}

// Blips returns the current blips
func (r *BlipRenderer) Blips() []Blip {
	return r.blips
}

// Render writes one bar into out starting at cursor and returns samples written
// The bar is clipped at the end of out; silence is written when there are no blips
func (r *BlipRenderer) Render(out []float32, cursor int) int {
	if cursor < 0 || cursor >= len(out) {
		return 0
	}
	n := min(r.barLength, len(out)-cursor)
	bar := out[cursor : cursor+n]
	for i := range bar {
		bar[i] = 0
	}
	if len(r.blips) == 0 {
		return n
	}

	slot := r.barLength / len(r.blips)
	if slot == 0 {
		slot = 1
	}
	for k, b := range r.blips {
		start := k * slot
		if start >= n {
			break
		}
		tone := ping(b.Freq, slot, r.rate, r.attack, r.release)
		for i, s := range tone {
			if start+i >= n {
				break
			}
			bar[start+i] = float32(s * b.Velocity * r.gain)
		}
	}
	return n
}

// Reset drops all state accumulated since construction
func (r *BlipRenderer) Reset() {
	r.blips = r.blips[:0]
}
