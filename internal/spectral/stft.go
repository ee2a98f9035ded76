// Package spectral implements the STFT-domain building blocks of the noise
// reducer: forward/inverse transform, noise floor estimation, spectral gating
// and mask smoothing.
package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrInvalidParameter reports a malformed transform, gate or mask parameter.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientSamples reports a signal too short for the requested analysis.
	ErrInsufficientSamples = errors.New("insufficient samples")
)

// overlapFactor is the number of frames covering each sample (75% overlap).
const overlapFactor = 4

// windowFloor guards the overlap-add normalisation against division by a
// vanishing window sum.
const windowFloor = 1e-10

// Spectrogram holds the complex STFT of a mono signal.
// Frames are indexed [frame][bin]; each frame has Size/2+1 bins.
type Spectrogram struct {
	Size   int            // Transform (window) length in samples
	Length int            // Sample count of the signal that was transformed
	Frames [][]complex128 // Complex bins per frame
}

// Hop returns the frame advance in samples.
func (s *Spectrogram) Hop() int {
	return s.Size / overlapFactor
}

// NumFrames returns the number of time frames.
func (s *Spectrogram) NumFrames() int {
	return len(s.Frames)
}

// NumBins returns the number of frequency bins per frame.
func (s *Spectrogram) NumBins() int {
	return s.Size/2 + 1
}

// Magnitude returns the absolute value of one time-frequency cell.
func (s *Spectrogram) Magnitude(frame, bin int) float64 {
	return cmplx.Abs(s.Frames[frame][bin])
}

// Clone returns a deep copy.
func (s *Spectrogram) Clone() *Spectrogram {
	out := &Spectrogram{Size: s.Size, Length: s.Length, Frames: make([][]complex128, len(s.Frames))}
	for i, frame := range s.Frames {
		out.Frames[i] = append([]complex128(nil), frame...)
	}
	return out
}

// ValidateSize checks that a transform size is usable: positive and divisible
// by the overlap factor so the hop is an exact sample count.
func ValidateSize(size int) error {
	if size < overlapFactor || size%overlapFactor != 0 {
		return fmt.Errorf("%w: transform size %d must be a positive multiple of %d", ErrInvalidParameter, size, overlapFactor)
	}
	return nil
}

// FrameCount returns the number of frames Forward produces for n samples.
func FrameCount(n, size int) int {
	return 1 + n/(size/overlapFactor)
}

// hannWindow returns a periodic Hann window, the DFT-even form used for
// spectral analysis.
func hannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return w
}

// Forward computes the STFT of samples.
//
// The signal is centred by size/2 zeros so the first sample sits under the
// peak of frame 0, and the trailing partial frame is zero padded. With hop
// size/4 this yields FrameCount(len(samples), size) frames.
func Forward(samples []float64, size int) (*Spectrogram, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: cannot transform an empty signal", ErrInsufficientSamples)
	}

	hop := size / overlapFactor
	numFrames := FrameCount(len(samples), size)
	padded := make([]float64, (numFrames-1)*hop+size)
	copy(padded[size/2:], samples)

	window := hannWindow(size)
	fft := fourier.NewFFT(size)
	frame := make([]float64, size)

	spec := &Spectrogram{Size: size, Length: len(samples), Frames: make([][]complex128, numFrames)}
	for f := 0; f < numFrames; f++ {
		start := f * hop
		for j := range frame {
			frame[j] = padded[start+j] * window[j]
		}
		spec.Frames[f] = fft.Coefficients(nil, frame)
	}

	return spec, nil
}

// Inverse reconstructs the time-domain signal by windowed overlap-add.
//
// Each synthesis frame is weighted by the analysis window and the sum is
// divided by the accumulated squared window, so Inverse(Forward(x)) == x up
// to floating-point error.
func Inverse(spec *Spectrogram) ([]float64, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spectrogram", ErrInvalidParameter)
	}
	if err := ValidateSize(spec.Size); err != nil {
		return nil, err
	}
	if spec.Length <= 0 || len(spec.Frames) == 0 {
		return nil, fmt.Errorf("%w: empty spectrogram", ErrInsufficientSamples)
	}
	if want := FrameCount(spec.Length, spec.Size); len(spec.Frames) != want {
		return nil, fmt.Errorf("%w: %d frames for %d samples, want %d", ErrInvalidParameter, len(spec.Frames), spec.Length, want)
	}

	size := spec.Size
	hop := size / overlapFactor
	bins := spec.NumBins()
	total := (len(spec.Frames)-1)*hop + size

	window := hannWindow(size)
	fft := fourier.NewFFT(size)
	out := make([]float64, total)
	norm := make([]float64, total)
	seq := make([]float64, size)
	scale := 1.0 / float64(size)

	for f, coeffs := range spec.Frames {
		if len(coeffs) != bins {
			return nil, fmt.Errorf("%w: frame %d has %d bins, want %d", ErrInvalidParameter, f, len(coeffs), bins)
		}
		// gonum returns the unnormalised inverse
		fft.Sequence(seq, coeffs)
		start := f * hop
		for j, v := range seq {
			out[start+j] += v * scale * window[j]
			norm[start+j] += window[j] * window[j]
		}
	}

	for i := range out {
		if norm[i] > windowFloor {
			out[i] /= norm[i]
		}
	}

	offset := size / 2
	return out[offset : offset+spec.Length], nil
}
