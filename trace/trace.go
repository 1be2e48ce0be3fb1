// Package trace accumulates per-step population rows into a 2-D image.
//
// Each row holds Width columns. The parasite vector is bucketed into the red channel
// and the host vector into the green channel, both normalized by the largest bucket
// seen during the run.
package trace

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// Source exposes the population snapshots a row is built from
type Source interface {
	ParasiteState() []float64
	HostState() []float64
}

// Row is one recorded step
type Row struct {
	Parasite []float64
	Host     []float64
}

// Trace collects rows for one run
type Trace struct {
	width int
	rows  []Row
	peak  float64
}

// New creates a trace with width columns and capacity for rows rows
func New(width, rows int) *Trace {
	if width < 1 {
		width = 1
	}
	return &Trace{width: width, rows: make([]Row, 0, max(rows, 0))}
}

// Width returns the number of columns per row
func (t *Trace) Width() int {
	return t.width
}

// Record appends one row built from the current snapshots
func (t *Trace) Record(src Source) {
	row := Row{
		Parasite: Bucket(src.ParasiteState(), t.width),
		Host:     Bucket(src.HostState(), t.width),
	}
	for i := range t.width {
		t.peak = max(t.peak, row.Parasite[i], row.Host[i])
	}
	t.rows = append(t.rows, row)
}

// Reset drops all rows, keeping capacity
func (t *Trace) Reset() {
	t.rows = t.rows[:0]
	t.peak = 0
}

// Rows returns the recorded rows
func (t *Trace) Rows() []Row {
	return t.rows
}

// Len returns the number of recorded rows
func (t *Trace) Len() int {
	return len(t.rows)
}

// Image renders the trace, one pixel per cell, rows top to bottom
func (t *Trace) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, max(len(t.rows), 1)))
	for y, row := range t.rows {
		for x := range t.width {
			img.SetRGBA(x, y, color.RGBA{
				R: t.level(row.Parasite[x]),
				G: t.level(row.Host[x]),
				A: 0xff,
			})
		}
	}
	return img
}

// Save writes the trace as a PNG
func (t *Trace) Save(path string) error {
	if err := imgio.Save(path, t.Image(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save trace %s: %w", path, err)
	}
	return nil
}

func (t *Trace) level(v float64) uint8 {
	if t.peak <= 0 || v <= 0 {
		return 0
	}
	return uint8(min(v/t.peak, 1) * 255)
}

// Bucket sums values into width columns, spreading indices evenly
func Bucket(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	for i, v := range values {
		if v <= 0 {
			continue
		}
		out[i*width/n] += v
	}
	return out
}

// Magnify scales the image at path by factor with nearest-neighbour sampling, in place
func Magnify(path string, factor int) error {
	if factor <= 1 {
		return nil
	}
	img, err := imgio.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	b := img.Bounds()
	out := transform.Resize(img, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor)
	if err := imgio.Save(path, out, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
