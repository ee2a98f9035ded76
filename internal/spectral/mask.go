package spectral

import (
	"fmt"
	"math"
)

// MaskBoost lifts the smoothed mask so cells bordering real signal are not
// over-attenuated by the averaging.
const MaskBoost = 1.2

// Mask is a per-cell gain in [0,1], indexed [frame][bin] like Spectrogram.
type Mask [][]float64

// KernelSize converts a smoothing radius to the odd kernel size SmoothMask
// expects: floor(radius/2)*2+1.
func KernelSize(radius int) int {
	if radius < 0 {
		radius = 0
	}
	return (radius/2)*2 + 1
}

// BinaryMask returns 1 for every non-zero cell of spec and 0 elsewhere.
func BinaryMask(spec *Spectrogram) Mask {
	mask := make(Mask, len(spec.Frames))
	for f, frame := range spec.Frames {
		row := make([]float64, len(frame))
		for b, c := range frame {
			if c != 0 {
				row[b] = 1
			}
		}
		mask[f] = row
	}
	return mask
}

// SmoothMask applies a kernel×kernel box average over time and frequency in
// place, then scales by MaskBoost and clamps to [0,1]. Edges are mirrored
// (half-sample symmetric) so border cells average over a full neighbourhood.
func SmoothMask(mask Mask, kernel int) error {
	if kernel < 1 || kernel%2 == 0 {
		return fmt.Errorf("%w: smoothing kernel %d must be odd and at least 1", ErrInvalidParameter, kernel)
	}
	if len(mask) == 0 {
		return nil
	}

	frames, bins := len(mask), len(mask[0])
	for f := range mask {
		if len(mask[f]) != bins {
			return fmt.Errorf("%w: mask row %d has %d bins, want %d", ErrInvalidParameter, f, len(mask[f]), bins)
		}
	}

	// The box filter is separable: average along frequency, then along time.
	half := kernel / 2
	inv := 1.0 / float64(kernel)
	tmp := make([][]float64, frames)
	for f := range mask {
		tmp[f] = make([]float64, bins)
		for b := 0; b < bins; b++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += mask[f][reflect(b+k, bins)]
			}
			tmp[f][b] = sum * inv
		}
	}

	for f := range mask {
		for b := 0; b < bins; b++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += tmp[reflect(f+k, frames)][b]
			}
			mask[f][b] = clampUnit(sum * inv * MaskBoost)
		}
	}

	return nil
}

// ApplyMask multiplies each cell of spec by the matching mask gain and returns
// the result as a new spectrogram.
func ApplyMask(spec *Spectrogram, mask Mask) (*Spectrogram, error) {
	if len(mask) != len(spec.Frames) {
		return nil, fmt.Errorf("%w: mask has %d frames, spectrogram has %d", ErrInvalidParameter, len(mask), len(spec.Frames))
	}

	out := &Spectrogram{Size: spec.Size, Length: spec.Length, Frames: make([][]complex128, len(spec.Frames))}
	for f, frame := range spec.Frames {
		if len(mask[f]) != len(frame) {
			return nil, fmt.Errorf("%w: mask frame %d has %d bins, want %d", ErrInvalidParameter, f, len(mask[f]), len(frame))
		}
		row := make([]complex128, len(frame))
		for b, c := range frame {
			row[b] = c * complex(mask[f][b], 0)
		}
		out.Frames[f] = row
	}
	return out, nil
}

// MaskMean returns the average gain across all cells, 0 for an empty mask.
func MaskMean(mask Mask) float64 {
	var sum float64
	var n int
	for _, row := range mask {
		for _, v := range row {
			sum += v
		}
		n += len(row)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// reflect maps an out-of-range index back into [0,n) by mirroring about the
// array edges: -1 → 0, -2 → 1, n → n-1.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
