package parameter

import "time"

// Run Length
const (
	// RunTimeLength is the audio duration of one run in seconds
	RunTimeLength = 40

	// BarDuration is the length of a single rendered bar
	BarDuration = 250 * time.Millisecond
)

// Blip Synthesis
const (
	// BlipBaseNote is the MIDI note of strain zero
	BlipBaseNote = 48

	// BlipAttack and BlipRelease shape every ping
	BlipAttack  = 4 * time.Millisecond
	BlipRelease = 60 * time.Millisecond

	// BlipGain keeps the sum of simultaneous pings under full scale
	BlipGain = 0.6

	// BlipMinVelocity drops strains too quiet to hear
	BlipMinVelocity = 0.02
)

// Encoding
const (
	// EncodeMasterVolume is the linear gain applied when writing the wav
	EncodeMasterVolume = 0.9

	// LameBinary is the external mp3 encoder; skipped when not on PATH
	LameBinary = "lame"
)
