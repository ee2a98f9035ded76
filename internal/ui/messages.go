package ui

import (
	"github.com/linuxmatters/roomtone/internal/processor"
)

// JobStartMsg indicates a new job has started
type JobStartMsg struct {
	JobIndex int
}

// CaptureProgressMsg reports how much of a microphone capture is recorded
type CaptureProgressMsg struct {
	Current int // Samples recorded so far
	Total   int // Samples requested
}

// StageMsg represents a progress update from the denoiser
type StageMsg struct {
	State    processor.State
	Pass     int     // Gating pass, 0 outside StateGating
	Progress float64 // 0.0 to 1.0
}

// JobCompleteMsg indicates a job has finished
type JobCompleteMsg struct {
	JobIndex   int
	OutputPath string
	Input      *processor.AudioMeasurements
	Final      *processor.AudioMeasurements
	Degenerate bool
	Error      error
}

// AllCompleteMsg indicates all jobs have been processed
type AllCompleteMsg struct{}
