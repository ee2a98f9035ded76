package spectral

import (
	"fmt"
	"math"
)

// Gate zeroes every cell whose magnitude does not exceed the noise threshold
// mean+sensitivity*std of its bin. The input spectrogram is left untouched.
func Gate(spec *Spectrogram, profile *NoiseProfile, sensitivity float64) (*Spectrogram, error) {
	if spec == nil || profile == nil {
		return nil, fmt.Errorf("%w: gate needs a spectrogram and a noise profile", ErrInvalidParameter)
	}
	if profile.NumBins() != spec.NumBins() || len(profile.Std) != len(profile.Mean) {
		return nil, fmt.Errorf("%w: noise profile has %d bins, spectrogram has %d", ErrInvalidParameter, profile.NumBins(), spec.NumBins())
	}
	if math.IsNaN(sensitivity) || math.IsInf(sensitivity, 0) || sensitivity < 0 {
		return nil, fmt.Errorf("%w: sensitivity %v", ErrInvalidParameter, sensitivity)
	}

	thresholds := make([]float64, profile.NumBins())
	for b := range thresholds {
		thresholds[b] = profile.Threshold(b, sensitivity)
	}

	out := &Spectrogram{Size: spec.Size, Length: spec.Length, Frames: make([][]complex128, len(spec.Frames))}
	for f, frame := range spec.Frames {
		gated := make([]complex128, len(frame))
		for b, c := range frame {
			if spec.Magnitude(f, b) > thresholds[b] {
				gated[b] = c
			}
		}
		out.Frames[f] = gated
	}

	return out, nil
}

// CountActive returns the number of non-zero cells.
func CountActive(spec *Spectrogram) int {
	n := 0
	for _, frame := range spec.Frames {
		for _, c := range frame {
			if c != 0 {
				n++
			}
		}
	}
	return n
}
