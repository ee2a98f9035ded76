package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/roomtone/internal/processor"
)

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString(renderJobQueue(m))
	b.WriteString("\n\n")

	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2E7D9A")).
		Render("Roomtone 🎙 - Spectral Noise Reduction")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Processing %d job(s)", m.TotalJobs))

	return title + "\n" + subtitle
}

// renderJobQueue renders the list of jobs with their status
func renderJobQueue(m Model) string {
	var b strings.Builder

	for _, job := range m.Jobs {
		b.WriteString(renderJobEntry(job, m.GatePasses))
		b.WriteString("\n")
	}

	return b.String()
}

// renderJobEntry renders a single job in the queue
func renderJobEntry(job JobProgress, gatePasses int) string {
	name := filepath.Base(job.Name)

	switch job.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		return fmt.Sprintf(" %s %s → %s\n   %s", icon, name, filepath.Base(job.OutputPath), summarizeJob(job))

	case StatusRecording, StatusDenoising:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, name, renderJobDetails(job, gatePasses))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, name, job.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, name)
	}
}

// renderJobDetails renders detailed progress for the active job
func renderJobDetails(job JobProgress, gatePasses int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#2E7D9A")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	progress := job.Progress
	if job.Status == StatusRecording {
		progress = 0
		if job.CaptureTotal > 0 {
			progress = float64(job.Captured) / float64(job.CaptureTotal)
		}
		content.WriteString("Recording from microphone\n")
	} else {
		content.WriteString(stageLabel(job.State, job.Pass, gatePasses))
		content.WriteString("\n")
	}

	content.WriteString(renderProgressBar(progress, 40))
	content.WriteString("\n\n")

	elapsed := job.ElapsedTime.Seconds()
	var remaining float64
	if progress > 0 {
		remaining = (elapsed / progress) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs", elapsed, remaining))

	return box.Render(content.String())
}

// stageLabel names the denoiser stage, with the gating pass when relevant
func stageLabel(state processor.State, pass, gatePasses int) string {
	if state == processor.StateGating && pass > 0 {
		return fmt.Sprintf("%s: pass %d/%d", state, pass, gatePasses)
	}
	return state.String()
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Jobs) {
		content = fmt.Sprintf("Processing job %d of %d (%d complete)",
			m.CurrentIndex+1, m.TotalJobs, m.CompletedJobs)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedJobs, m.TotalJobs)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Processing Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, job := range m.Jobs {
		switch job.Status {
		case StatusComplete:
			b.WriteString(renderCompletedJob(job))
			b.WriteString("\n")
		case StatusError:
			b.WriteString(renderJobEntry(job, m.GatePasses))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d complete, %d failed\n", m.CompletedJobs, m.FailedJobs))

	return b.String()
}

// renderCompletedJob renders a summary for a completed job
func renderCompletedJob(job JobProgress) string {
	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")

	return fmt.Sprintf(" %s %s → %s\n   %s\n   Time: %.1fs",
		icon, filepath.Base(job.Name), filepath.Base(job.OutputPath),
		summarizeJob(job), job.ElapsedTime.Seconds())
}

// summarizeJob describes the noise floor change of a finished job
func summarizeJob(job JobProgress) string {
	if job.Degenerate {
		return "Output is digital silence, normalisation skipped"
	}
	if job.Input == nil || job.Final == nil {
		return "Done"
	}
	return fmt.Sprintf("Noise floor: %.1f dBFS → %.1f dBFS | Peak: %.1f dBFS",
		job.Input.NoiseFloor, job.Final.NoiseFloor, job.Final.PeakLevel)
}
