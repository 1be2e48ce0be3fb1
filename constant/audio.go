package constant

// Audio Output Format
const (
	// AudioSampleRate is the rate of every rendered buffer and encoded file
	AudioSampleRate = 44100
	AudioChannels   = 1
	// AudioPrecision is bytes per sample in the encoded wav
	AudioPrecision = 2
)

// Artifact file extensions
const (
	ExtWAV = ".wav"
	ExtMP3 = ".mp3"
	ExtPNG = ".png"
)
