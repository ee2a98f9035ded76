package spectral

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// testSignal returns a deterministic mix of a tone and uniform noise.
func testSignal(n, sampleRate int, toneHz, toneAmp, noiseAmp float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = toneAmp*math.Sin(2*math.Pi*toneHz*t) + noiseAmp*(2*rng.Float64()-1)
	}
	return out
}

func TestForwardInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		length int
	}{
		{"512 window, exact hop multiple", 512, 512 * 20},
		{"1024 window, ragged tail", 1024, 1024*7 + 333},
		{"2048 window, 1 second at 48k", 2048, 48000},
		{"1536 window, non power of two", 1536, 10007},
		{"4096 window, shorter than window", 4096, 1000},
		{"512 window, single sample", 512, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := testSignal(tt.length, 48000, 440, 0.5, 0.1, int64(tt.length))

			spec, err := Forward(x, tt.size)
			if err != nil {
				t.Fatalf("Forward() error = %v", err)
			}
			if got, want := spec.NumFrames(), FrameCount(tt.length, tt.size); got != want {
				t.Errorf("NumFrames() = %d, want %d", got, want)
			}
			if got, want := len(spec.Frames[0]), tt.size/2+1; got != want {
				t.Errorf("bins per frame = %d, want %d", got, want)
			}

			y, err := Inverse(spec)
			if err != nil {
				t.Fatalf("Inverse() error = %v", err)
			}
			if len(y) != len(x) {
				t.Fatalf("len(Inverse) = %d, want %d", len(y), len(x))
			}

			maxErr := 0.0
			for i := range x {
				maxErr = math.Max(maxErr, math.Abs(x[i]-y[i]))
			}
			if maxErr >= 1e-4 {
				t.Errorf("round trip max abs error = %g, want < 1e-4", maxErr)
			}
		})
	}
}

func TestForwardRejectsInvalidSize(t *testing.T) {
	x := make([]float64, 4096)
	for _, size := range []int{0, -512, 2, 6, 1023} {
		if _, err := Forward(x, size); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Forward(size=%d) error = %v, want ErrInvalidParameter", size, err)
		}
	}
}

func TestForwardRejectsEmptySignal(t *testing.T) {
	if _, err := Forward(nil, 512); !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("Forward(nil) error = %v, want ErrInsufficientSamples", err)
	}
}

func TestInverseRejectsInconsistentFraming(t *testing.T) {
	spec, err := Forward(make([]float64, 4000), 512)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	spec.Frames = spec.Frames[:len(spec.Frames)-1]
	if _, err := Inverse(spec); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Inverse() error = %v, want ErrInvalidParameter", err)
	}
}

func TestForwardTonePeaksAtExpectedBin(t *testing.T) {
	const (
		sampleRate = 48000
		size       = 2048
		toneHz     = 1500.0
	)
	x := testSignal(sampleRate, sampleRate, toneHz, 0.5, 0, 1)

	spec, err := Forward(x, size)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	mid := spec.NumFrames() / 2
	peakBin := 0
	for b := 1; b < spec.NumBins(); b++ {
		if spec.Magnitude(mid, b) > spec.Magnitude(mid, peakBin) {
			peakBin = b
		}
	}

	wantBin := int(math.Round(toneHz * size / sampleRate))
	if peakBin != wantBin {
		t.Errorf("peak bin = %d, want %d", peakBin, wantBin)
	}
}

func TestSpectrogramClone(t *testing.T) {
	spec, err := Forward(testSignal(2000, 16000, 200, 0.3, 0, 2), 512)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	clone := spec.Clone()
	clone.Frames[0][3] = 42

	if spec.Frames[0][3] == 42 {
		t.Error("Clone shares frame storage with the original")
	}
}
