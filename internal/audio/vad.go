package audio

// VADConfig holds configuration for Voice Activity Detection
type VADConfig struct {
	EnergyThreshold float64 // Normalized RMS threshold for speech detection
	SilenceFrames   int     // Consecutive silence frames before speech is considered ended
	FrameSize       int     // Samples per frame (320 = 20ms at 16kHz)
}

// DefaultVADConfig returns a default VAD configuration
func DefaultVADConfig() *VADConfig {
	return &VADConfig{
		EnergyThreshold: 0.015,
		SilenceFrames:   10,  // 200ms of hangover
		FrameSize:       320, // 20ms at 16kHz
	}
}

// VADDetector performs energy based Voice Activity Detection.
// Frames may straddle Process calls; the remainder is carried over.
type VADDetector struct {
	config         *VADConfig
	silenceCounter int
	isSpeaking     bool
	pending        []float32
}

// NewVADDetector creates a new VAD detector
func NewVADDetector(config *VADConfig) *VADDetector {
	if config == nil {
		config = DefaultVADConfig()
	}
	if config.FrameSize <= 0 {
		config.FrameSize = DefaultVADConfig().FrameSize
	}
	return &VADDetector{config: config}
}

// ProcessFrame processes one frame and returns (isSpeaking, speechStarted, speechEnded)
func (v *VADDetector) ProcessFrame(samples []float32) (bool, bool, bool) {
	frameHasSpeech := CalculateRMS(samples) > v.config.EnergyThreshold

	var speechStarted, speechEnded bool

	if frameHasSpeech {
		v.silenceCounter = 0
		if !v.isSpeaking {
			speechStarted = true
			v.isSpeaking = true
		}
	} else {
		v.silenceCounter++
		if v.isSpeaking && v.silenceCounter >= v.config.SilenceFrames {
			speechEnded = true
			v.isSpeaking = false
			v.silenceCounter = 0
		}
	}

	return v.isSpeaking, speechStarted, speechEnded
}

// Process splits samples into frames and returns how many samples fell inside speech,
// hangover included
func (v *VADDetector) Process(samples []float32) int {
	size := v.config.FrameSize
	voiced := 0

	if len(v.pending) > 0 {
		need := size - len(v.pending)
		if len(samples) < need {
			v.pending = append(v.pending, samples...)
			return 0
		}
		frame := append(v.pending, samples[:need]...)
		if speaking, _, _ := v.ProcessFrame(frame); speaking {
			voiced += size
		}
		samples = samples[need:]
		v.pending = v.pending[:0]
	}

	for len(samples) >= size {
		if speaking, _, _ := v.ProcessFrame(samples[:size]); speaking {
			voiced += size
		}
		samples = samples[size:]
	}

	if len(samples) > 0 {
		v.pending = append(v.pending[:0], samples...)
	}

	return voiced
}

// Reset resets the VAD detector state
func (v *VADDetector) Reset() {
	v.silenceCounter = 0
	v.isSpeaking = false
	v.pending = v.pending[:0]
}

// IsSpeaking returns whether speech is currently detected
func (v *VADDetector) IsSpeaking() bool {
	return v.isSpeaking
}

// DetectSilence reports whether samples stay under the energy threshold
func DetectSilence(samples []float32, threshold float64) bool {
	return CalculateRMS(samples) < threshold
}
