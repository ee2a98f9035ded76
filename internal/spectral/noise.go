package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NoiseProfile is the per-bin magnitude statistics of a noise-only segment.
// It is computed once per run and must not be modified afterwards.
type NoiseProfile struct {
	Size int       // Transform size the profile was measured with
	Mean []float64 // Mean magnitude per bin
	Std  []float64 // Population standard deviation of magnitude per bin
}

// NumBins returns the number of frequency bins in the profile.
func (p *NoiseProfile) NumBins() int {
	return len(p.Mean)
}

// Threshold returns the gating threshold for a bin at the given sensitivity.
func (p *NoiseProfile) Threshold(bin int, sensitivity float64) float64 {
	return p.Mean[bin] + sensitivity*p.Std[bin]
}

// EstimateNoise measures the noise floor of clip. The clip must hold at least
// one full transform window.
func EstimateNoise(clip []float64, size int) (*NoiseProfile, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}
	if len(clip) < size {
		return nil, fmt.Errorf("%w: noise reference has %d samples, need at least %d", ErrInsufficientSamples, len(clip), size)
	}

	spec, err := Forward(clip, size)
	if err != nil {
		return nil, err
	}

	bins := spec.NumBins()
	profile := &NoiseProfile{
		Size: size,
		Mean: make([]float64, bins),
		Std:  make([]float64, bins),
	}

	mags := make([]float64, spec.NumFrames())
	for b := 0; b < bins; b++ {
		for f := range spec.Frames {
			mags[f] = spec.Magnitude(f, b)
		}
		profile.Mean[b], profile.Std[b] = stat.PopMeanStdDev(mags, nil)
	}

	return profile, nil
}

// FindQuietSegment locates the lowest-energy stretch of samples to use as a
// noise reference when none is supplied.
//
// Frames of size samples advance by size/4; the frame with the smallest RMS
// marks the start of a clip of 2*size samples. When that clip would run past
// the end of the buffer its start is pulled back so the clip stays inside the
// buffer. Returns the clip and its sample offset.
func FindQuietSegment(samples []float64, size int) ([]float64, int, error) {
	if err := ValidateSize(size); err != nil {
		return nil, 0, err
	}
	if len(samples) < size {
		return nil, 0, fmt.Errorf("%w: %d samples cannot hold a %d-sample analysis frame", ErrInsufficientSamples, len(samples), size)
	}

	hop := size / overlapFactor
	numFrames := 1 + (len(samples)-size)/hop
	energy := make([]float64, numFrames)
	for f := range energy {
		energy[f] = frameRMS(samples[f*hop : f*hop+size])
	}

	start := floats.MinIdx(energy) * hop
	length := 2 * size
	if start+length > len(samples) {
		start = max(0, len(samples)-length)
	}
	end := min(start+length, len(samples))

	if end-start < size {
		return nil, 0, fmt.Errorf("%w: quiet segment at %d has %d samples, need %d", ErrInsufficientSamples, start, end-start, size)
	}

	clip := append([]float64(nil), samples[start:end]...)
	return clip, start, nil
}

// frameRMS returns the root-mean-square level of a frame.
func frameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
}
