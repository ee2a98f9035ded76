package processor

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/linuxmatters/roomtone/internal/spectral"
)

// State is a step of the noise reduction run
type State int

const (
	StateIdle State = iota
	StateNoiseProfiling
	StateGating
	StateReconstructing
	StateNormalizing
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateNoiseProfiling:
		return "Noise profiling"
	case StateGating:
		return "Gating"
	case StateReconstructing:
		return "Reconstructing"
	case StateNormalizing:
		return "Normalizing"
	case StateDone:
		return "Done"
	case StateAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProgressCallback receives denoiser progress. pass is the 1-based gating
// pass while in StateGating and 0 otherwise; progress runs 0.0 to 1.0 over
// the whole run.
type ProgressCallback func(state State, pass int, progress float64)

// PassStats records what one gating pass did
type PassStats struct {
	Pass        int
	ActiveCells int     // Cells that survived the gate
	TotalCells  int     // Cells in the spectrogram
	MaskMean    float64 // Average gain of the smoothed mask
}

// DenoiseResult is the output of a completed run
type DenoiseResult struct {
	Samples     []float64
	Gain        float64 // Linear gain applied by peak normalisation
	Degenerate  bool    // Output was digital silence; normalisation skipped
	NoiseOffset int     // Sample offset of the detected noise reference, -1 if supplied
	NoiseLength int     // Length of the noise reference in samples
	Passes      []PassStats
}

// Denoiser runs spectral-gating noise reduction over one buffer.
// A Denoiser is single use and not safe for concurrent calls.
type Denoiser struct {
	cfg      Config
	logger   *zap.Logger
	progress ProgressCallback
	state    State
}

// NewDenoiser creates a denoiser. logger and progress may be nil.
func NewDenoiser(cfg Config, logger *zap.Logger, progress ProgressCallback) *Denoiser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Denoiser{cfg: cfg, logger: logger, progress: progress, state: StateIdle}
}

// State returns the current step of the run
func (d *Denoiser) State() State {
	return d.state
}

// Run denoises samples. When noiseRef is nil the quietest segment of samples
// is used as the noise reference.
//
// On any error the denoiser moves to StateAborted and no samples are
// returned. The input slice is not modified.
func (d *Denoiser) Run(samples, noiseRef []float64) (*DenoiseResult, error) {
	if d.state != StateIdle {
		return nil, fmt.Errorf("denoiser already used (state %s)", d.state)
	}

	result, err := d.run(samples, noiseRef)
	if err != nil {
		d.logger.Warn("denoise aborted", zap.Stringer("state", d.state), zap.Error(err))
		d.state = StateAborted
		return nil, err
	}

	d.enter(StateDone, 0, 1.0)
	return result, nil
}

func (d *Denoiser) run(samples, noiseRef []float64) (*DenoiseResult, error) {
	if err := d.cfg.ValidateDenoise(); err != nil {
		return nil, err
	}
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: sample %d is not finite", spectral.ErrInvalidParameter, i)
		}
	}

	size := d.cfg.TransformSize
	passes := d.cfg.GatePasses
	// progress budget: profile, transform, passes, reconstruct, normalise
	steps := float64(passes + 4)

	d.enter(StateNoiseProfiling, 0, 0)

	result := &DenoiseResult{NoiseOffset: -1}
	if noiseRef == nil {
		clip, offset, err := spectral.FindQuietSegment(samples, size)
		if err != nil {
			return nil, fmt.Errorf("noise reference detection failed: %w", err)
		}
		noiseRef = clip
		result.NoiseOffset = offset
		d.logger.Debug("detected noise reference",
			zap.Int("offset", offset),
			zap.Int("length", len(clip)))
	}
	result.NoiseLength = len(noiseRef)

	profile, err := spectral.EstimateNoise(noiseRef, size)
	if err != nil {
		return nil, fmt.Errorf("noise profile failed: %w", err)
	}
	d.report(1 / steps)

	working, err := spectral.Forward(samples, size)
	if err != nil {
		return nil, fmt.Errorf("forward transform failed: %w", err)
	}
	d.report(2 / steps)

	totalCells := working.NumFrames() * working.NumBins()
	kernel := d.cfg.KernelSize()

	var mask spectral.Mask
	for pass := 1; pass <= passes; pass++ {
		d.enter(StateGating, pass, (1+float64(pass))/steps)

		gated, err := spectral.Gate(working, profile, d.cfg.Sensitivity)
		if err != nil {
			return nil, fmt.Errorf("gating pass %d failed: %w", pass, err)
		}

		mask = spectral.BinaryMask(gated)
		if err := spectral.SmoothMask(mask, kernel); err != nil {
			return nil, fmt.Errorf("mask smoothing pass %d failed: %w", pass, err)
		}

		working, err = spectral.ApplyMask(working, mask)
		if err != nil {
			return nil, fmt.Errorf("mask application pass %d failed: %w", pass, err)
		}

		stats := PassStats{
			Pass:        pass,
			ActiveCells: spectral.CountActive(gated),
			TotalCells:  totalCells,
			MaskMean:    spectral.MaskMean(mask),
		}
		result.Passes = append(result.Passes, stats)
		d.logger.Debug("gating pass complete",
			zap.Int("pass", pass),
			zap.Int("active_cells", stats.ActiveCells),
			zap.Int("total_cells", stats.TotalCells),
			zap.Float64("mask_mean", stats.MaskMean))
	}

	d.enter(StateReconstructing, 0, (2+float64(passes))/steps)

	// The last mask is applied once more on the way out, matching the
	// reference behaviour: the output is working × mask.
	final, err := spectral.ApplyMask(working, mask)
	if err != nil {
		return nil, fmt.Errorf("final mask application failed: %w", err)
	}
	out, err := spectral.Inverse(final)
	if err != nil {
		return nil, fmt.Errorf("inverse transform failed: %w", err)
	}
	if len(out) != len(samples) {
		return nil, errors.New("inverse transform length mismatch")
	}

	d.enter(StateNormalizing, 0, (3+float64(passes))/steps)

	result.Gain, result.Degenerate = PeakNormalise(out, PeakTarget)
	if result.Degenerate {
		d.logger.Info("output is digital silence, normalisation skipped")
	}
	result.Samples = out

	return result, nil
}

func (d *Denoiser) enter(s State, pass int, progress float64) {
	d.state = s
	d.logger.Debug("denoise state", zap.Stringer("state", s), zap.Int("pass", pass))
	if d.progress != nil {
		d.progress(s, pass, progress)
	}
}

func (d *Denoiser) report(progress float64) {
	if d.progress != nil {
		d.progress(d.state, 0, progress)
	}
}

// Denoise is a convenience wrapper running a fresh Denoiser
func Denoise(samples, noiseRef []float64, cfg Config, logger *zap.Logger) (*DenoiseResult, error) {
	return NewDenoiser(cfg, logger, nil).Run(samples, noiseRef)
}
