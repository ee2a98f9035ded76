package audio

import (
	"fmt"
	"math"
)

// Waveform is the mono sample buffer handed between capture, the denoiser
// and whatever consumes the result. Samples are nominally in [-1, 1].
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// NewWaveform wraps float64 samples, converting to float32.
func NewWaveform(samples []float64, sampleRate int) *Waveform {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return &Waveform{Samples: out, SampleRate: sampleRate}
}

// Float64 returns a float64 copy of the samples for processing.
func (w *Waveform) Float64() []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = float64(s)
	}
	return out
}

// Duration returns the length in seconds.
func (w *Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Validate checks the sample rate and that every sample is finite.
func (w *Waveform) Validate() error {
	if w.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", w.SampleRate)
	}
	for i, s := range w.Samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("sample %d is not finite (%v)", i, s)
		}
	}
	return nil
}
