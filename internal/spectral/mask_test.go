package spectral

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestKernelSize(t *testing.T) {
	tests := []struct {
		radius int
		want   int
	}{
		{0, 1}, {1, 1}, {2, 3}, {3, 3}, {4, 5}, {5, 5}, {11, 11}, {-3, 1},
	}
	for _, tt := range tests {
		if got := KernelSize(tt.radius); got != tt.want {
			t.Errorf("KernelSize(%d) = %d, want %d", tt.radius, got, tt.want)
		}
	}
}

func TestSmoothMaskBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for _, kernel := range []int{1, 3, 5, 7, 9, 11} {
		for _, fill := range []string{"zeros", "ones", "random", "checker"} {
			mask := make(Mask, 40)
			for f := range mask {
				mask[f] = make([]float64, 33)
				for b := range mask[f] {
					switch fill {
					case "ones":
						mask[f][b] = 1
					case "random":
						mask[f][b] = rng.Float64()
					case "checker":
						mask[f][b] = float64((f + b) % 2)
					}
				}
			}

			if err := SmoothMask(mask, kernel); err != nil {
				t.Fatalf("SmoothMask(kernel=%d, %s) error = %v", kernel, fill, err)
			}
			for f := range mask {
				for b, v := range mask[f] {
					if v < 0 || v > 1 || math.IsNaN(v) {
						t.Fatalf("kernel=%d %s: mask[%d][%d] = %g outside [0,1]", kernel, fill, f, b, v)
					}
				}
			}
		}
	}
}

func TestSmoothMaskAveraging(t *testing.T) {
	// A single active cell in the middle of a 5x5 zero mask spreads 1/9 to
	// its 3x3 neighbourhood, boosted by MaskBoost.
	mask := make(Mask, 5)
	for f := range mask {
		mask[f] = make([]float64, 5)
	}
	mask[2][2] = 1

	if err := SmoothMask(mask, 3); err != nil {
		t.Fatalf("SmoothMask() error = %v", err)
	}

	want := MaskBoost / 9
	for f := 1; f <= 3; f++ {
		for b := 1; b <= 3; b++ {
			if math.Abs(mask[f][b]-want) > 1e-12 {
				t.Errorf("mask[%d][%d] = %g, want %g", f, b, mask[f][b], want)
			}
		}
	}
	if mask[0][0] != 0 || mask[4][4] != 0 {
		t.Errorf("corners = %g, %g, want 0", mask[0][0], mask[4][4])
	}
}

func TestSmoothMaskKernelOneOnlyBoosts(t *testing.T) {
	mask := Mask{{0, 0.5, 0.9, 1}}
	if err := SmoothMask(mask, 1); err != nil {
		t.Fatalf("SmoothMask() error = %v", err)
	}
	want := []float64{0, 0.6, 1, 1}
	for b, v := range mask[0] {
		if math.Abs(v-want[b]) > 1e-12 {
			t.Errorf("mask[0][%d] = %g, want %g", b, v, want[b])
		}
	}
}

func TestSmoothMaskRejectsEvenKernel(t *testing.T) {
	mask := Mask{{1, 0}, {0, 1}}
	for _, kernel := range []int{0, 2, 4, -1} {
		if err := SmoothMask(mask, kernel); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("SmoothMask(kernel=%d) error = %v, want ErrInvalidParameter", kernel, err)
		}
	}
}

func TestBinaryMaskAndApply(t *testing.T) {
	spec := &Spectrogram{Size: 4, Length: 2, Frames: [][]complex128{{0, complex(2, 2), 1}, {3, 0, 0}}}

	mask := BinaryMask(spec)
	want := Mask{{0, 1, 1}, {1, 0, 0}}
	for f := range want {
		for b := range want[f] {
			if mask[f][b] != want[f][b] {
				t.Errorf("mask[%d][%d] = %g, want %g", f, b, mask[f][b], want[f][b])
			}
		}
	}

	mask[0][1] = 0.5
	out, err := ApplyMask(spec, mask)
	if err != nil {
		t.Fatalf("ApplyMask() error = %v", err)
	}
	if out.Frames[0][1] != complex(1, 1) {
		t.Errorf("ApplyMask cell = %v, want (1+1i)", out.Frames[0][1])
	}
	if got := MaskMean(mask); math.Abs(got-2.5/6) > 1e-12 {
		t.Errorf("MaskMean() = %g, want %g", got, 2.5/6)
	}

	if _, err := ApplyMask(spec, mask[:1]); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("ApplyMask(short mask) error = %v, want ErrInvalidParameter", err)
	}
}

func TestReflect(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 5, 0}, {-2, 5, 1}, {5, 5, 4}, {6, 5, 3}, {2, 5, 2}, {-3, 1, 0}, {-4, 2, 0},
	}
	for _, tt := range tests {
		if got := reflect(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
