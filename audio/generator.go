package audio

import (
	"math"
	"time"
)

// floatBuffer is mono float64 samples at unity gain
type floatBuffer []float64

// ping renders a sine ping of the given length with attack/release shaping
func ping(freq float64, samples, rate int, attack, release time.Duration) floatBuffer {
	buf := make(floatBuffer, samples)
	phase := 0.0
	phaseInc := freq / float64(rate)

	for i := range buf {
		buf[i] = math.Sin(2 * math.Pi * phase)
		phase += phaseInc
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	applyEnvelope(buf, rate, attack.Seconds(), release.Seconds())
	return buf
}

// applyEnvelope applies attack/release envelope in place
func applyEnvelope(buf floatBuffer, rate int, attackSec, releaseSec float64) {
	total := len(buf)
	attackSamples := min(int(attackSec*float64(rate)), total)
	releaseSamples := min(int(releaseSec*float64(rate)), total)

	releaseStart := total - releaseSamples
	if releaseStart < attackSamples {
		releaseStart = attackSamples
	}

	for i := 0; i < total; i++ {
		vol := 1.0
		if i < attackSamples && attackSamples > 0 {
			vol = float64(i) / float64(attackSamples)
		} else if i >= releaseStart && releaseSamples > 0 {
			vol = float64(total-i) / float64(releaseSamples)
		}
		buf[i] *= vol
	}
}

// durationToSamples converts duration to sample count at rate
func durationToSamples(d time.Duration, rate int) int {
	return int(d.Seconds() * float64(rate))
}
