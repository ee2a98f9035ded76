package processor

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/roomtone/internal/audio"
)

// TestAudioOptions configures the synthetic audio to generate
type TestAudioOptions struct {
	DurationSecs float64 // Total duration in seconds
	SampleRate   int     // Sample rate (default: 48000)
	ToneFreq     float64 // Sine wave frequency in Hz (0 = no tone)
	ToneAmp      float64 // Tone peak amplitude
	ToneStart    float64 // Seconds of noise-only lead-in before the tone
	NoiseAmp     float64 // Uniform noise amplitude (0 = no noise)
	Seed         int64
}

// generateSamples creates a deterministic tone plus uniform noise buffer
func generateSamples(opts TestAudioOptions) []float64 {
	if opts.SampleRate == 0 {
		opts.SampleRate = 48000
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 2.0
	}

	total := int(opts.DurationSecs * float64(opts.SampleRate))
	toneStart := int(opts.ToneStart * float64(opts.SampleRate))
	rng := rand.New(rand.NewSource(opts.Seed))

	samples := make([]float64, total)
	for i := range samples {
		var s float64
		if opts.ToneFreq > 0 && i >= toneStart {
			t := float64(i) / float64(opts.SampleRate)
			s = opts.ToneAmp * math.Sin(2*math.Pi*opts.ToneFreq*t)
		}
		if opts.NoiseAmp > 0 {
			s += opts.NoiseAmp * (2*rng.Float64() - 1)
		}
		samples[i] = s
	}
	return samples
}

// generateTestAudio writes synthetic audio to a WAV file in a per-test
// temporary directory and returns its path
func generateTestAudio(t *testing.T, opts TestAudioOptions) string {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 48000
	}
	path := filepath.Join(t.TempDir(), "test.wav")
	w := audio.NewWaveform(generateSamples(opts), opts.SampleRate)
	if err := audio.WriteWAV(path, w); err != nil {
		t.Fatalf("failed to write test audio: %v", err)
	}
	return path
}

// testConfig returns the default config at the given sample rate and length
func testConfig(sampleRate, seconds int) Config {
	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.DurationSeconds = seconds
	return cfg
}
