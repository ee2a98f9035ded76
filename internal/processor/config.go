package processor

import (
	"fmt"
	"math"
	"slices"

	"github.com/linuxmatters/roomtone/internal/spectral"
)

// DefaultGatePasses is the number of gate → mask → smooth passes. It is a
// fixed regulariser, not a convergence criterion.
const DefaultGatePasses = 2

// PeakTarget is the absolute peak level the output is normalised to,
// leaving a little headroom below full scale.
const PeakTarget = 0.99

// Configuration bounds
const (
	MinDurationSeconds = 1
	MaxDurationSeconds = 60

	MinTransformSize  = 512
	MaxTransformSize  = 4096
	TransformSizeStep = 512

	MinSensitivity = 0.5
	MaxSensitivity = 3.0

	MinSmoothingRadius = 1
	MaxSmoothingRadius = 11

	MinGatePasses = 1
	MaxGatePasses = 8
)

// SupportedSampleRates lists the capture rates accepted by Validate
var SupportedSampleRates = []int{16000, 44100, 48000}

// Config holds the capture and noise reduction parameters.
// Build one with NewConfig so it is validated before use.
type Config struct {
	DurationSeconds int     `json:"duration_seconds"` // Capture length
	SampleRate      int     `json:"sample_rate"`      // Capture rate in Hz
	TransformSize   int     `json:"transform_size"`   // STFT window length in samples
	Sensitivity     float64 `json:"sensitivity"`      // Gate threshold = mean + Sensitivity*std
	SmoothingRadius int     `json:"smoothing_radius"` // Odd mask smoothing kernel size
	GatePasses      int     `json:"gate_passes"`      // Gate → mask → smooth iterations
	Adaptive        bool    `json:"adaptive"`         // Tune the gate from input measurements
}

// DefaultConfig returns the default capture and noise reduction settings
func DefaultConfig() Config {
	return Config{
		DurationSeconds: 5,
		SampleRate:      48000,
		TransformSize:   2048,
		Sensitivity:     1.2,
		SmoothingRadius: 5,
		GatePasses:      DefaultGatePasses,
	}
}

// NewConfig validates c and returns it. The returned value is a copy, so
// later changes to the caller's struct do not affect it.
func NewConfig(c Config) (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field, including the capture-only ones.
func (c Config) Validate() error {
	if c.DurationSeconds < MinDurationSeconds || c.DurationSeconds > MaxDurationSeconds {
		return invalidf("duration_seconds %d outside %d-%d", c.DurationSeconds, MinDurationSeconds, MaxDurationSeconds)
	}
	if !slices.Contains(SupportedSampleRates, c.SampleRate) {
		return invalidf("sample_rate %d not one of %v", c.SampleRate, SupportedSampleRates)
	}
	return c.ValidateDenoise()
}

// ValidateDenoise checks the fields used by the noise reducer. Offline files
// bring their own sample rate and length, so those are not checked here.
func (c Config) ValidateDenoise() error {
	if c.TransformSize < MinTransformSize || c.TransformSize > MaxTransformSize || c.TransformSize%TransformSizeStep != 0 {
		return invalidf("transform_size %d must be %d-%d in steps of %d", c.TransformSize, MinTransformSize, MaxTransformSize, TransformSizeStep)
	}
	if math.IsNaN(c.Sensitivity) || c.Sensitivity < MinSensitivity || c.Sensitivity > MaxSensitivity {
		return invalidf("sensitivity %v outside %.1f-%.1f", c.Sensitivity, MinSensitivity, MaxSensitivity)
	}
	if c.SmoothingRadius < MinSmoothingRadius || c.SmoothingRadius > MaxSmoothingRadius || c.SmoothingRadius%2 == 0 {
		return invalidf("smoothing_radius %d must be odd and %d-%d", c.SmoothingRadius, MinSmoothingRadius, MaxSmoothingRadius)
	}
	if c.GatePasses < MinGatePasses || c.GatePasses > MaxGatePasses {
		return invalidf("gate_passes %d outside %d-%d", c.GatePasses, MinGatePasses, MaxGatePasses)
	}
	return nil
}

// KernelSize returns the odd smoothing kernel derived from SmoothingRadius
func (c Config) KernelSize() int {
	return spectral.KernelSize(c.SmoothingRadius)
}

// CaptureSamples returns the number of samples a capture of this config holds
func (c Config) CaptureSamples() int {
	return c.DurationSeconds * c.SampleRate
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", spectral.ErrInvalidParameter, fmt.Sprintf(format, args...))
}
