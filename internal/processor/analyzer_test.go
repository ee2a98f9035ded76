package processor

import (
	"math"
	"testing"
)

func TestAnalyzeSamplesLevels(t *testing.T) {
	const sampleRate = 48000

	tests := []struct {
		name        string
		opts        TestAudioOptions
		wantPeak    float64 // dBFS
		wantRMS     float64 // dBFS
		wantClipped bool
	}{
		{
			name:     "half scale sine",
			opts:     TestAudioOptions{DurationSecs: 1, ToneFreq: 1000, ToneAmp: 0.5},
			wantPeak: -6.02,
			wantRMS:  -9.03,
		},
		{
			name:     "quiet sine",
			opts:     TestAudioOptions{DurationSecs: 1, ToneFreq: 1000, ToneAmp: 0.01},
			wantPeak: -40.0,
			wantRMS:  -43.01,
		},
		{
			name:        "full scale sine",
			opts:        TestAudioOptions{DurationSecs: 1, ToneFreq: 1000, ToneAmp: 1.0},
			wantPeak:    0,
			wantRMS:     -3.01,
			wantClipped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.SampleRate = sampleRate
			m := AnalyzeSamples(generateSamples(tt.opts), sampleRate, 50)

			if math.Abs(m.PeakLevel-tt.wantPeak) > 0.05 {
				t.Errorf("PeakLevel = %.2f, want %.2f", m.PeakLevel, tt.wantPeak)
			}
			if math.Abs(m.RMSLevel-tt.wantRMS) > 0.05 {
				t.Errorf("RMSLevel = %.2f, want %.2f", m.RMSLevel, tt.wantRMS)
			}
			if math.Abs(m.CrestFactor-3.01) > 0.1 {
				t.Errorf("CrestFactor = %.2f, want 3.01 for a sine", m.CrestFactor)
			}
			if (m.ClippedSamples > 0) != tt.wantClipped {
				t.Errorf("ClippedSamples = %d, want clipped=%v", m.ClippedSamples, tt.wantClipped)
			}
			if math.Abs(m.Duration-1) > 1e-9 {
				t.Errorf("Duration = %v, want 1", m.Duration)
			}
			if m.DigitalSilence {
				t.Error("tone reported as digital silence")
			}
		})
	}
}

func TestAnalyzeSamplesSilence(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
	}{
		{"zeros", make([]float64, 48000)},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := AnalyzeSamples(tt.samples, 48000, 50)
			if !m.DigitalSilence {
				t.Error("DigitalSilence = false, want true")
			}
			if m.PeakLevel != DigitalSilenceDB || m.RMSLevel != DigitalSilenceDB || m.NoiseFloor != DigitalSilenceDB {
				t.Errorf("levels = %v/%v/%v, want %v", m.PeakLevel, m.RMSLevel, m.NoiseFloor, DigitalSilenceDB)
			}
			if m.SpectralCentroid != 0 || m.HumProminence != 0 {
				t.Errorf("spectral measurements on silence: centroid %v hum %v", m.SpectralCentroid, m.HumProminence)
			}
		})
	}
}

func TestAnalyzeSamplesNoiseFloor(t *testing.T) {
	const sampleRate = 48000
	// 0.5 s of quiet noise, then a loud tone over the same noise
	samples := generateSamples(TestAudioOptions{
		DurationSecs: 2, SampleRate: sampleRate,
		ToneFreq: 500, ToneAmp: 0.5, ToneStart: 0.5,
		NoiseAmp: 0.001, Seed: 1,
	})
	m := AnalyzeSamples(samples, sampleRate, 50)

	// Uniform noise of amplitude a has RMS a/sqrt(3): -64.8 dBFS for 0.001
	if m.NoiseFloor < -70 || m.NoiseFloor > -60 {
		t.Errorf("NoiseFloor = %.1f dBFS, want about -65", m.NoiseFloor)
	}
	if m.SignalToNoise < 40 {
		t.Errorf("SignalToNoise = %.1f dB, want > 40", m.SignalToNoise)
	}
}

func TestAnalyzeSamplesSpectralCentroid(t *testing.T) {
	const sampleRate = 48000
	tests := []struct {
		toneHz float64
	}{
		{250},
		{1000},
		{4000},
	}
	for _, tt := range tests {
		samples := generateSamples(TestAudioOptions{DurationSecs: 1, SampleRate: sampleRate, ToneFreq: tt.toneHz, ToneAmp: 0.5})
		m := AnalyzeSamples(samples, sampleRate, 50)
		if math.Abs(m.SpectralCentroid-tt.toneHz) > tt.toneHz*0.05 {
			t.Errorf("SpectralCentroid for %.0f Hz tone = %.1f", tt.toneHz, m.SpectralCentroid)
		}
	}
}

func TestAnalyzeSamplesHum(t *testing.T) {
	const sampleRate = 48000

	hum := generateSamples(TestAudioOptions{DurationSecs: 2, SampleRate: sampleRate, ToneFreq: 50, ToneAmp: 0.05, NoiseAmp: 0.001, Seed: 2})
	clean := generateSamples(TestAudioOptions{DurationSecs: 2, SampleRate: sampleRate, NoiseAmp: 0.001, Seed: 2})

	withHum := AnalyzeSamples(hum, sampleRate, 50)
	if withHum.MainsFrequency != 50 {
		t.Errorf("MainsFrequency = %d, want 50", withHum.MainsFrequency)
	}
	if withHum.HumProminence < 20 {
		t.Errorf("HumProminence with 50 Hz hum = %.1f dB, want > 20", withHum.HumProminence)
	}

	noHum := AnalyzeSamples(clean, sampleRate, 50)
	if noHum.HumProminence > 6 {
		t.Errorf("HumProminence of white noise = %.1f dB, want < 6", noHum.HumProminence)
	}
}

func TestWelchSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{100, 0},
		{256, 256},
		{1000, 512},
		{48000, 8192},
	}
	for _, tt := range tests {
		if got := welchSize(tt.n); got != tt.want {
			t.Errorf("welchSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
