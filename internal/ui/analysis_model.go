package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/roomtone/internal/audio"
	"github.com/linuxmatters/roomtone/internal/processor"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// AnalysisResult holds the measurements of one analysed file
type AnalysisResult struct {
	Path         string
	Measurements *processor.AudioMeasurements
	Metadata     *audio.Metadata
	Error        error
	Elapsed      time.Duration
}

// AnalysisModel shows a spinner while files are measured one at a time.
// Results are kept in order so the caller can print them after the
// program exits.
type AnalysisModel struct {
	Paths   []string
	Results []AnalysisResult
	Current int // Index of the file being measured, -1 before the first

	StartTime    time.Time
	spinnerIndex int
	Done         bool

	Width  int
	Height int
}

// AnalysisStartMsg signals analysis of Paths[Index] has started
type AnalysisStartMsg struct {
	Index int
}

// AnalysisCompleteMsg carries the measurements for one file
type AnalysisCompleteMsg struct {
	Index        int
	Measurements *processor.AudioMeasurements
	Metadata     *audio.Metadata
	Error        error
}

// tickMsg is sent for spinner/timer animation
type tickMsg time.Time

// NewAnalysisModel creates an analysis UI model for paths
func NewAnalysisModel(paths []string) AnalysisModel {
	return AnalysisModel{
		Paths:     paths,
		Results:   make([]AnalysisResult, 0, len(paths)),
		Current:   -1,
		StartTime: time.Now(),
	}
}

// Init starts the spinner
func (m AnalysisModel) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, tickCmd()

	case AnalysisStartMsg:
		if msg.Index < 0 || msg.Index >= len(m.Paths) {
			return m, nil
		}
		m.Current = msg.Index
		m.StartTime = time.Now()

	case AnalysisCompleteMsg:
		if msg.Index < 0 || msg.Index >= len(m.Paths) {
			return m, nil
		}
		m.Results = append(m.Results, AnalysisResult{
			Path:         m.Paths[msg.Index],
			Measurements: msg.Measurements,
			Metadata:     msg.Metadata,
			Error:        msg.Error,
			Elapsed:      time.Since(m.StartTime),
		})
		if len(m.Results) == len(m.Paths) {
			m.Done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the UI
func (m AnalysisModel) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2E7D9A")).
		Render("Roomtone")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Analysis Mode - %d file(s)", len(m.Paths)))

	b.WriteString(title + " " + subtitle)
	b.WriteString("\n\n")

	for _, r := range m.Results {
		b.WriteString(renderAnalysisResult(r))
		b.WriteString("\n")
	}

	if m.Done || m.Current < 0 {
		if m.Current < 0 {
			b.WriteString("Waiting...")
		}
		return b.String()
	}

	fileStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true)
	spinnerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D9A"))

	b.WriteString(spinnerStyle.Render(spinnerFrames[m.spinnerIndex]))
	b.WriteString(" Analysing ")
	b.WriteString(fileStyle.Render(filepath.Base(m.Paths[m.Current])))
	b.WriteString(fmt.Sprintf(" [%s]\n", formatElapsed(time.Since(m.StartTime))))

	return b.String()
}

// renderAnalysisResult renders a one-line summary of a finished file
func renderAnalysisResult(r AnalysisResult) string {
	name := filepath.Base(r.Path)
	if r.Error != nil {
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s: %v", icon, name, r.Error)
	}

	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
	return fmt.Sprintf(" %s %s  noise floor %.1f dBFS, hum %.1f dB (%.1fs)",
		icon, name, r.Measurements.NoiseFloor, r.Measurements.HumProminence, r.Elapsed.Seconds())
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
