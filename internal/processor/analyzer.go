package processor

import (
	"math"

	welch "github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/linuxmatters/roomtone/internal/mains"
)

// Analysis constants
const (
	noiseFloorWindowSecs = 0.05  // 50ms RMS windows for noise floor search
	clipThreshold        = 0.999 // |sample| at or above this counts as clipped
	minWelchSize         = 256   // Shortest PSD segment worth computing
	maxWelchSize         = 8192  // Longest PSD segment (≈0.17 s at 48 kHz)
	humHarmonics         = 3     // Mains fundamental plus two harmonics
	humGuardBins         = 2     // Bins either side of the hum bin excluded from the reference
	humReferenceBins     = 8     // Reference bins either side of the guard
	spectralFloor        = 1e-20 // PSD sums below this are treated as silence
)

// AudioMeasurements contains level and spectral measurements of a buffer
type AudioMeasurements struct {
	Duration   float64 // seconds
	SampleRate int

	PeakLevel      float64 // dBFS
	RMSLevel       float64 // dBFS
	NoiseFloor     float64 // dBFS, RMS of the quietest 50ms window
	SignalToNoise  float64 // dB, RMSLevel - NoiseFloor
	CrestFactor    float64 // dB, PeakLevel - RMSLevel
	ClippedSamples int

	SpectralCentroid float64 // Hz, 0 when there is no spectrum to measure
	MainsFrequency   int     // Hz, 50 or 60
	HumProminence    float64 // dB the strongest mains harmonic stands above its neighbours

	DigitalSilence bool // every sample is exactly zero
}

// AnalyzeSamples measures a mono buffer. mainsHz selects the hum frequency
// to inspect; pass 0 to detect it from the local timezone.
func AnalyzeSamples(samples []float64, sampleRate int, mainsHz int) *AudioMeasurements {
	if mainsHz == 0 {
		mainsHz = mains.Frequency()
	}

	m := &AudioMeasurements{
		SampleRate:     sampleRate,
		MainsFrequency: mainsHz,
		PeakLevel:      DigitalSilenceDB,
		RMSLevel:       DigitalSilenceDB,
		NoiseFloor:     DigitalSilenceDB,
	}
	if sampleRate > 0 {
		m.Duration = float64(len(samples)) / float64(sampleRate)
	}
	if len(samples) == 0 {
		m.DigitalSilence = true
		return m
	}

	peak := PeakLevel(samples)
	rms := math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
	m.DigitalSilence = peak == 0
	m.PeakLevel = LinearToDb(peak)
	m.RMSLevel = LinearToDb(rms)
	m.CrestFactor = m.PeakLevel - m.RMSLevel

	for _, s := range samples {
		if math.Abs(s) >= clipThreshold {
			m.ClippedSamples++
		}
	}

	m.NoiseFloor = LinearToDb(quietestWindowRMS(samples, sampleRate))
	m.SignalToNoise = m.RMSLevel - m.NoiseFloor

	if !m.DigitalSilence && sampleRate > 0 {
		measureSpectrum(m, samples, sampleRate)
	}

	return m
}

// quietestWindowRMS returns the RMS of the quietest 50ms window (50% overlap).
// Buffers shorter than one window are measured whole.
func quietestWindowRMS(samples []float64, sampleRate int) float64 {
	size := int(noiseFloorWindowSecs * float64(sampleRate))
	if size <= 0 || size >= len(samples) {
		return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
	}

	hop := max(1, size/2)
	quietest := math.Inf(1)
	for start := 0; start+size <= len(samples); start += hop {
		frame := samples[start : start+size]
		quietest = math.Min(quietest, floats.Dot(frame, frame)/float64(size))
	}
	return math.Sqrt(quietest)
}

// measureSpectrum fills the spectral centroid and hum prominence from a
// Welch power spectral density estimate.
func measureSpectrum(m *AudioMeasurements, samples []float64, sampleRate int) {
	nfft := welchSize(len(samples))
	if nfft == 0 {
		return
	}

	pxx, freqs := welch.Pwelch(samples, float64(sampleRate), &welch.PwelchOptions{
		NFFT:     nfft,
		Noverlap: nfft / 2,
		Window:   window.Hann,
		Pad:      nfft,
	})
	if len(pxx) == 0 || len(pxx) != len(freqs) {
		return
	}

	total := floats.Sum(pxx)
	if total < spectralFloor {
		return
	}
	m.SpectralCentroid = floats.Dot(pxx, freqs) / total

	binHz := float64(sampleRate) / float64(nfft)
	for _, hz := range mains.Harmonics(m.MainsFrequency, humHarmonics, float64(sampleRate)/2) {
		m.HumProminence = math.Max(m.HumProminence, humProminence(pxx, int(math.Round(hz/binHz))))
	}
}

// humProminence compares the power at bin with the mean power of the
// reference bins around it, skipping a guard band for window leakage.
func humProminence(pxx []float64, bin int) float64 {
	if bin <= 0 || bin >= len(pxx) {
		return 0
	}

	var ref float64
	var n int
	for off := humGuardBins + 1; off <= humGuardBins+humReferenceBins; off++ {
		for _, b := range []int{bin - off, bin + off} {
			if b > 0 && b < len(pxx) {
				ref += pxx[b]
				n++
			}
		}
	}
	if n == 0 || ref <= 0 || pxx[bin] <= 0 {
		return 0
	}
	return math.Max(0, 10*math.Log10(pxx[bin]/(ref/float64(n))))
}

// welchSize picks the largest power-of-two segment that fits the buffer,
// or 0 when the buffer is too short for a useful estimate.
func welchSize(n int) int {
	if n < minWelchSize {
		return 0
	}
	size := minWelchSize
	for size*2 <= n && size*2 <= maxWelchSize {
		size *= 2
	}
	return size
}
