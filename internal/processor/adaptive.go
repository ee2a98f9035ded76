package processor

import "math"

// Adaptive tuning thresholds
const (
	// Headroom between speech RMS and the noise floor
	headroomClean = 30.0 // dB, above this the noise sits well below the signal
	headroomNoisy = 15.0 // dB, below this noise and signal overlap

	sensitivityClean = 1.5 // Higher threshold, only strong noise bins pass the gate
	sensitivityNoisy = 0.9 // Lower threshold, keep more of a buried signal

	// Noise floor above which an extra gating pass is added
	noiseFloorLoud = -45.0 // dBFS

	// Hum that stands this far above its neighbours widens the smoothing kernel
	humProminent       = 12.0 // dB
	humSmoothingRadius = 7
)

// AdaptConfig tunes the gate from measurements of the input. Only
// Sensitivity, GatePasses and SmoothingRadius are touched, and the result
// always passes ValidateDenoise when the input config does.
func AdaptConfig(cfg *Config, m *AudioMeasurements) {
	if m == nil || m.DigitalSilence {
		return
	}

	tuneSensitivity(cfg, m)
	tuneGatePasses(cfg, m)
	tuneSmoothing(cfg, m)

	sanitizeConfig(cfg)
}

// tuneSensitivity interpolates between the noisy and clean thresholds on
// the measured headroom. Clean recordings can afford a stricter gate; noisy
// ones need a lenient gate or quiet speech is gated with the noise.
func tuneSensitivity(cfg *Config, m *AudioMeasurements) {
	headroom := m.SignalToNoise
	switch {
	case headroom >= headroomClean:
		cfg.Sensitivity = sensitivityClean
	case headroom <= headroomNoisy:
		cfg.Sensitivity = sensitivityNoisy
	default:
		t := (headroom - headroomNoisy) / (headroomClean - headroomNoisy)
		cfg.Sensitivity = sensitivityNoisy + t*(sensitivityClean-sensitivityNoisy)
	}
}

func tuneGatePasses(cfg *Config, m *AudioMeasurements) {
	if m.NoiseFloor > noiseFloorLoud && cfg.GatePasses < MaxGatePasses {
		cfg.GatePasses++
	}
}

func tuneSmoothing(cfg *Config, m *AudioMeasurements) {
	if m.HumProminence >= humProminent && cfg.SmoothingRadius < humSmoothingRadius {
		cfg.SmoothingRadius = humSmoothingRadius
	}
}

// sanitizeConfig replaces non-finite values and pulls everything back into
// the valid ranges
func sanitizeConfig(cfg *Config) {
	cfg.Sensitivity = clamp(sanitizeFloat(cfg.Sensitivity, DefaultConfig().Sensitivity), MinSensitivity, MaxSensitivity)
	cfg.GatePasses = int(clamp(float64(cfg.GatePasses), MinGatePasses, MaxGatePasses))
	cfg.SmoothingRadius = int(clamp(float64(cfg.SmoothingRadius), MinSmoothingRadius, MaxSmoothingRadius))
	if cfg.SmoothingRadius%2 == 0 {
		cfg.SmoothingRadius--
	}
}

// sanitizeFloat returns defaultVal if val is NaN or Inf
func sanitizeFloat(val, defaultVal float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return defaultVal
	}
	return val
}

// clamp restricts val to the range [min, max]
func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
