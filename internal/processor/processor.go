// Package processor handles noise reduction, normalisation and analysis of
// mono audio buffers
package processor

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/linuxmatters/roomtone/internal/audio"
	"github.com/linuxmatters/roomtone/internal/capture"
	"github.com/linuxmatters/roomtone/internal/spectral"
)

// ProcessingResult contains the output of one record or clean job
type ProcessingResult struct {
	OutputPath string // Empty when nothing was written
	Output     *audio.Waveform
	Input      *AudioMeasurements
	Final      *AudioMeasurements
	Denoise    *DenoiseResult
	Config     Config // Settings actually used, after adaptive tuning
}

// NoiseWindow selects an explicit noise reference in seconds. A nil window
// means the quietest segment is detected automatically.
type NoiseWindow struct {
	Start  float64
	Length float64
}

// Slice returns the part of samples covered by the window
func (n *NoiseWindow) Slice(samples []float64, sampleRate int) ([]float64, error) {
	if !isFinite(n.Start) || !isFinite(n.Length) || n.Start < 0 || n.Length <= 0 {
		return nil, fmt.Errorf("%w: noise window start %v length %v", spectral.ErrInvalidParameter, n.Start, n.Length)
	}
	// bounds are checked in seconds so huge values never reach the int conversion
	total := float64(len(samples)) / float64(sampleRate)
	if n.Start >= total || n.Start+n.Length > total {
		return nil, fmt.Errorf("%w: noise window %.2fs+%.2fs beyond %.2fs of audio",
			spectral.ErrInsufficientSamples, n.Start, n.Length, total)
	}
	start := int(n.Start * float64(sampleRate))
	end := min(start+int(n.Length*float64(sampleRate)), len(samples))
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: noise window start %v length %v", spectral.ErrInvalidParameter, n.Start, n.Length)
	}
	return samples[start:end], nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RecordAndDenoise captures cfg.DurationSeconds of audio from session and
// denoises it. The configuration is validated before the device is touched.
//
// When trigger is false nothing happens and (nil, nil) is returned. Capture
// progress goes to reporter, denoiser progress to progress; both may be nil.
func RecordAndDenoise(ctx context.Context, session *capture.Session, trigger bool, cfg Config, logger *zap.Logger, reporter capture.Reporter, progress ProgressCallback) (*ProcessingResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !trigger {
		return nil, nil
	}

	req := capture.Request{DurationSeconds: cfg.DurationSeconds, SampleRate: cfg.SampleRate}
	wave, err := session.Capture(ctx, true, req, reporter)
	if err != nil {
		return nil, err
	}

	return denoiseWaveform(wave, nil, cfg, logger, progress)
}

// ProcessFile denoises a WAV file and writes the result next to it as
// <basename>-denoised.wav. Multi-channel files are downmixed to mono.
func ProcessFile(inputPath string, cfg Config, noise *NoiseWindow, logger *zap.Logger, progress ProgressCallback) (*ProcessingResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.ValidateDenoise(); err != nil {
		return nil, err
	}

	wave, meta, err := audio.ReadWAV(inputPath)
	if err != nil {
		return nil, err
	}
	logger.Info("input loaded",
		zap.String("path", inputPath),
		zap.Int("sample_rate", meta.SampleRate),
		zap.Int("channels", meta.Channels),
		zap.Int("bit_depth", meta.BitDepth),
		zap.Float64("duration", meta.Duration))

	result, err := denoiseWaveform(wave, noise, cfg, logger, progress)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}

	result.OutputPath = audio.OutputPath(inputPath)
	if err := audio.WriteWAV(result.OutputPath, result.Output); err != nil {
		return nil, err
	}
	logger.Info("output written", zap.String("path", result.OutputPath))

	return result, nil
}

// AnalyzeFile measures a WAV file without processing it
func AnalyzeFile(inputPath string) (*AudioMeasurements, *audio.Metadata, error) {
	wave, metadata, err := audio.ReadWAV(inputPath)
	if err != nil {
		return nil, nil, err
	}
	return AnalyzeSamples(wave.Float64(), wave.SampleRate, 0), metadata, nil
}

func denoiseWaveform(wave *audio.Waveform, noise *NoiseWindow, cfg Config, logger *zap.Logger, progress ProgressCallback) (*ProcessingResult, error) {
	if err := wave.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", spectral.ErrInvalidParameter, err)
	}

	samples := wave.Float64()
	input := AnalyzeSamples(samples, wave.SampleRate, 0)

	if cfg.Adaptive {
		AdaptConfig(&cfg, input)
		logger.Debug("adapted gate settings",
			zap.Float64("sensitivity", cfg.Sensitivity),
			zap.Int("gate_passes", cfg.GatePasses),
			zap.Int("smoothing_radius", cfg.SmoothingRadius))
	}

	var noiseRef []float64
	if noise != nil {
		ref, err := noise.Slice(samples, wave.SampleRate)
		if err != nil {
			return nil, err
		}
		noiseRef = ref
	}

	denoised, err := NewDenoiser(cfg, logger, progress).Run(samples, noiseRef)
	if err != nil {
		return nil, err
	}

	return &ProcessingResult{
		Config:  cfg,
		Output:  audio.NewWaveform(denoised.Samples, wave.SampleRate),
		Input:   input,
		Final:   AnalyzeSamples(denoised.Samples, wave.SampleRate, input.MainsFrequency),
		Denoise: denoised,
	}, nil
}
