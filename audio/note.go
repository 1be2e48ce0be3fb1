package audio

import "math"

// NoteFrequencies contains precomputed frequencies for MIDI notes 0-127
// A4 (note 69) = 440Hz, equal temperament
var NoteFrequencies [128]float64

// pentatonic is the major pentatonic scale as semitone offsets within an octave
var pentatonic = [...]int{0, 2, 4, 7, 9}

func init() {
	for i := range NoteFrequencies {
		NoteFrequencies[i] = 440.0 * math.Exp2((float64(i)-69.0)/12.0)
	}
}

// NoteFreq returns frequency in Hz for MIDI note number
func NoteFreq(midi int) float64 {
	if midi < 0 || midi >= 128 {
		return 0
	}
	return NoteFrequencies[midi]
}

// ScaleNote maps a strain index onto the pentatonic ladder starting at base
// so neighbouring strains never clash
func ScaleNote(base, index int) int {
	if index < 0 {
		index = 0
	}
	octave := index / len(pentatonic)
	return base + octave*12 + pentatonic[index%len(pentatonic)]
}
