package processor

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PeakLevel returns the largest absolute sample value
func PeakLevel(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Norm(samples, math.Inf(1))
}

// PeakNormalise scales samples in place so the absolute peak equals target.
//
// A signal whose peak is exactly zero is digital silence: it is left
// untouched and reported as degenerate with unity gain rather than divided
// by zero.
func PeakNormalise(samples []float64, target float64) (gain float64, degenerate bool) {
	peak := PeakLevel(samples)
	if peak == 0 {
		return 1, true
	}

	gain = target / peak
	if gain != 1 {
		floats.Scale(gain, samples)
	}
	return gain, false
}

// DbToLinear converts decibel value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibel value.
// Inverse of DbToLinear.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return DigitalSilenceDB // Practical floor for audio
	}
	return math.Max(DigitalSilenceDB, 20.0*math.Log10(linear))
}

// DigitalSilenceDB is the level reported for true digital zero
const DigitalSilenceDB = -120.0
