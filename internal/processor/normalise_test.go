package processor

import (
	"math"
	"testing"
)

func TestPeakNormalise(t *testing.T) {
	tests := []struct {
		name           string
		samples        []float64
		wantGain       float64
		wantDegenerate bool
	}{
		{"quiet signal raised", []float64{0.1, -0.2, 0.05}, 0.99 / 0.2, false},
		{"hot signal lowered", []float64{0.5, -1.5, 0.25}, 0.99 / 1.5, false},
		{"negative peak", []float64{-0.9, 0.3}, 0.99 / 0.9, false},
		{"digital silence", []float64{0, 0, 0, 0}, 1, true},
		{"empty", []float64{}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := append([]float64(nil), tt.samples...)
			gain, degenerate := PeakNormalise(tt.samples, PeakTarget)

			if degenerate != tt.wantDegenerate {
				t.Errorf("degenerate = %v, want %v", degenerate, tt.wantDegenerate)
			}
			if math.Abs(gain-tt.wantGain) > 1e-12 {
				t.Errorf("gain = %v, want %v", gain, tt.wantGain)
			}
			if tt.wantDegenerate {
				for i := range orig {
					if tt.samples[i] != orig[i] {
						t.Fatalf("silent signal modified at %d", i)
					}
				}
				return
			}
			if peak := PeakLevel(tt.samples); math.Abs(peak-PeakTarget) > 1e-12 {
				t.Errorf("peak after normalise = %v, want %v", peak, PeakTarget)
			}
		})
	}
}

func TestPeakNormaliseIdempotent(t *testing.T) {
	samples := generateSamples(TestAudioOptions{DurationSecs: 0.5, ToneFreq: 300, ToneAmp: 0.3, NoiseAmp: 0.05, Seed: 3})

	PeakNormalise(samples, PeakTarget)
	once := append([]float64(nil), samples...)

	gain, degenerate := PeakNormalise(samples, PeakTarget)
	if degenerate {
		t.Fatal("second normalise reported degenerate")
	}
	if math.Abs(gain-1) > 1e-12 {
		t.Errorf("second gain = %v, want 1", gain)
	}
	for i := range samples {
		if math.Abs(samples[i]-once[i]) > 1e-12 {
			t.Fatalf("sample %d changed from %v to %v", i, once[i], samples[i])
		}
	}
}

func TestDbConversions(t *testing.T) {
	tests := []struct {
		db     float64
		linear float64
	}{
		{0, 1},
		{-6.0206, 0.5},
		{-20, 0.1},
		{-40, 0.01},
	}
	for _, tt := range tests {
		if got := DbToLinear(tt.db); math.Abs(got-tt.linear) > 1e-4 {
			t.Errorf("DbToLinear(%v) = %v, want %v", tt.db, got, tt.linear)
		}
		if got := LinearToDb(tt.linear); math.Abs(got-tt.db) > 1e-3 {
			t.Errorf("LinearToDb(%v) = %v, want %v", tt.linear, got, tt.db)
		}
	}

	if got := LinearToDb(0); got != DigitalSilenceDB {
		t.Errorf("LinearToDb(0) = %v, want %v", got, DigitalSilenceDB)
	}
	if got := LinearToDb(1e-9); got != DigitalSilenceDB {
		t.Errorf("LinearToDb(1e-9) = %v, want floor %v", got, DigitalSilenceDB)
	}
}
