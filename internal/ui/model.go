// Package ui provides the Bubbletea terminal user interface for roomtone
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/roomtone/internal/processor"
)

// JobStatus represents the state of a single record or clean job
type JobStatus int

const (
	StatusQueued JobStatus = iota
	StatusRecording
	StatusDenoising
	StatusComplete
	StatusError
)

// JobProgress tracks progress for a single job
type JobProgress struct {
	Name       string // Input file, or a label for a microphone capture
	OutputPath string
	Status     JobStatus

	// Recording progress in samples
	Captured     int
	CaptureTotal int

	// Denoiser progress
	State    processor.State
	Pass     int
	Progress float64 // 0.0 to 1.0

	StartTime   time.Time
	ElapsedTime time.Duration

	// Completion results
	Input      *processor.AudioMeasurements
	Final      *processor.AudioMeasurements
	Degenerate bool

	Error error
}

// Model is the Bubbletea model for the processing UI
type Model struct {
	Jobs          []JobProgress
	CurrentIndex  int
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	GatePasses    int

	StartTime time.Time
	Done      bool

	Width  int
	Height int

	logger *zap.Logger
}

// NewModel creates a UI model with one job per name. logger may be nil.
func NewModel(names []string, gatePasses int, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	jobs := make([]JobProgress, len(names))
	for i, name := range names {
		jobs[i] = JobProgress{Name: name, Status: StatusQueued}
	}

	return Model{
		Jobs:         jobs,
		CurrentIndex: -1,
		TotalJobs:    len(names),
		GatePasses:   gatePasses,
		StartTime:    time.Now(),
		logger:       logger,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case JobStartMsg:
		m.logger.Debug("job started", zap.Int("index", msg.JobIndex))
		if msg.JobIndex < 0 || msg.JobIndex >= len(m.Jobs) {
			return m, nil
		}
		m.CurrentIndex = msg.JobIndex
		m.Jobs[m.CurrentIndex].Status = StatusDenoising
		m.Jobs[m.CurrentIndex].StartTime = time.Now()

	case CaptureProgressMsg:
		if job := m.current(); job != nil {
			job.Status = StatusRecording
			job.Captured = msg.Current
			job.CaptureTotal = msg.Total
			job.ElapsedTime = time.Since(job.StartTime)
		}

	case StageMsg:
		if job := m.current(); job != nil {
			*job = updateJobProgress(*job, msg)
		}

	case JobCompleteMsg:
		m.logger.Debug("job complete", zap.Int("index", msg.JobIndex), zap.Error(msg.Error))
		if msg.JobIndex < 0 || msg.JobIndex >= len(m.Jobs) {
			return m, nil
		}
		job := &m.Jobs[msg.JobIndex]
		job.OutputPath = msg.OutputPath
		job.Input = msg.Input
		job.Final = msg.Final
		job.Degenerate = msg.Degenerate
		job.Error = msg.Error
		job.ElapsedTime = time.Since(job.StartTime)
		if msg.Error != nil {
			job.Status = StatusError
			m.FailedJobs++
		} else {
			job.Status = StatusComplete
			job.Progress = 1.0
			m.CompletedJobs++
		}

	case AllCompleteMsg:
		m.logger.Debug("all jobs complete",
			zap.Int("completed", m.CompletedJobs),
			zap.Int("failed", m.FailedJobs))
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nJobs: %d\n", len(m.Jobs))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

func (m *Model) current() *JobProgress {
	if m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Jobs) {
		return nil
	}
	return &m.Jobs[m.CurrentIndex]
}

// updateJobProgress applies a denoiser stage update
func updateJobProgress(job JobProgress, msg StageMsg) JobProgress {
	job.Status = StatusDenoising
	job.State = msg.State
	job.Progress = msg.Progress
	if msg.State == processor.StateGating {
		job.Pass = msg.Pass
	}
	job.ElapsedTime = time.Since(job.StartTime)
	return job
}
