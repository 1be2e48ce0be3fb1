package audio

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"

	"github.com/lixenwraith/redking/constant"
)

// Encoder turns a rendered sample buffer into an audio file
type Encoder interface {
	// Encode writes samples to basePath plus an extension and returns the final path
	Encode(ctx context.Context, samples []float32, rate int, basePath string) (string, error)
}

// sampleStreamer plays a mono float32 buffer as a beep.Streamer
type sampleStreamer struct {
	samples []float32
	pos     int
}

func (s *sampleStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	for i := range samples {
		if s.pos >= len(s.samples) {
			return i, true
		}
		v := float64(s.samples[s.pos])
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
	}
	return len(samples), true
}

func (s *sampleStreamer) Err() error { return nil }

// Helper to create a volume effect safely
// math.Log2(0) is -Inf, so we handle 0 volume by making it silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// FileEncoder writes a 16-bit mono wav and, when the lame binary is available,
// converts it to mp3 and removes the wav
type FileEncoder struct {
	Volume float64
	Lame   string
	log    *zap.Logger
}

// NewFileEncoder creates an encoder; an empty lame disables mp3 conversion
func NewFileEncoder(volume float64, lame string, logger *zap.Logger) *FileEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileEncoder{Volume: volume, Lame: lame, log: logger}
}

func (e *FileEncoder) Encode(ctx context.Context, samples []float32, rate int, basePath string) (string, error) {
	wavPath := basePath + constant.ExtWAV
	if err := writeWAV(wavPath, samples, rate, e.Volume); err != nil {
		return "", err
	}

	if e.Lame == "" {
		return wavPath, nil
	}
	lame, err := exec.LookPath(e.Lame)
	if err != nil {
		e.log.Debug("mp3 encoder not found, keeping wav", zap.String("binary", e.Lame))
		return wavPath, nil
	}

	mp3Path := basePath + constant.ExtMP3
	cmd := exec.CommandContext(ctx, lame, "--quiet", wavPath, mp3Path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("lame %s: %w: %s", wavPath, err, out)
	}
	if err := os.Remove(wavPath); err != nil {
		return "", fmt.Errorf("remove intermediate wav: %w", err)
	}
	return mp3Path, nil
}

func writeWAV(path string, samples []float32, rate int, volume float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: constant.AudioChannels,
		Precision:   constant.AudioPrecision,
	}
	streamer := newVolume(&sampleStreamer{samples: samples}, volume)
	if err := wav.Encode(f, streamer, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	return f.Close()
}
