package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/roomtone/internal/processor"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func TestModelJobLifecycle(t *testing.T) {
	m := NewModel([]string{"microphone", "take2.wav"}, 2, nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = update(t, m, JobStartMsg{JobIndex: 0})
	if m.CurrentIndex != 0 || m.Jobs[0].Status != StatusDenoising {
		t.Fatalf("after start: index %d status %v", m.CurrentIndex, m.Jobs[0].Status)
	}

	m = update(t, m, CaptureProgressMsg{Current: 24000, Total: 48000})
	if m.Jobs[0].Status != StatusRecording || m.Jobs[0].Captured != 24000 {
		t.Errorf("capture progress not applied: %+v", m.Jobs[0])
	}
	if view := m.View(); !strings.Contains(view, "Recording from microphone") || !strings.Contains(view, "50%") {
		t.Errorf("recording view missing progress:\n%s", view)
	}

	m = update(t, m, StageMsg{State: processor.StateGating, Pass: 2, Progress: 0.6})
	if m.Jobs[0].Status != StatusDenoising || m.Jobs[0].Pass != 2 {
		t.Errorf("stage not applied: %+v", m.Jobs[0])
	}
	if view := m.View(); !strings.Contains(view, "Gating: pass 2/2") {
		t.Errorf("denoise view missing stage:\n%s", view)
	}

	m = update(t, m, JobCompleteMsg{
		JobIndex:   0,
		OutputPath: "take1.wav",
		Input:      &processor.AudioMeasurements{NoiseFloor: -50},
		Final:      &processor.AudioMeasurements{NoiseFloor: -72, PeakLevel: -0.1},
	})
	m = update(t, m, JobStartMsg{JobIndex: 1})
	m = update(t, m, JobCompleteMsg{JobIndex: 1, Error: errors.New("boom")})

	if m.CompletedJobs != 1 || m.FailedJobs != 1 {
		t.Errorf("completed %d failed %d, want 1 and 1", m.CompletedJobs, m.FailedJobs)
	}

	next, cmd := m.Update(AllCompleteMsg{})
	m = next.(Model)
	if !m.Done || cmd == nil {
		t.Fatal("AllCompleteMsg should finish and quit")
	}

	view := m.View()
	for _, want := range []string{"Processing Complete", "-50.0 dBFS → -72.0 dBFS", "Error: boom", "1 complete, 1 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary missing %q:\n%s", want, view)
		}
	}
}

func TestModelIgnoresOutOfRangeJobs(t *testing.T) {
	m := NewModel([]string{"a.wav"}, 2, nil)
	m = update(t, m, JobStartMsg{JobIndex: 5})
	m = update(t, m, StageMsg{State: processor.StateGating, Pass: 1, Progress: 0.3})
	m = update(t, m, JobCompleteMsg{JobIndex: -1})

	if m.CurrentIndex != -1 || m.CompletedJobs != 0 || m.Jobs[0].Status != StatusQueued {
		t.Errorf("out of range messages changed the model: %+v", m)
	}
}

func TestSummarizeDegenerateJob(t *testing.T) {
	got := summarizeJob(JobProgress{Degenerate: true})
	if !strings.Contains(got, "digital silence") {
		t.Errorf("summarizeJob() = %q", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "0%"},
		{0.5, "50%"},
		{1, "100%"},
		{1.5, "100%"},
		{-1, "0%"},
	}
	for _, tt := range tests {
		if got := renderProgressBar(tt.progress, 10); !strings.HasSuffix(got, tt.want) {
			t.Errorf("renderProgressBar(%v) = %q, want suffix %q", tt.progress, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{65 * time.Second, "01:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestAnalysisModelCompletes(t *testing.T) {
	var next tea.Model = NewAnalysisModel([]string{"/tmp/guest.wav", "/tmp/host.wav"})
	next, _ = next.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	next, _ = next.Update(AnalysisStartMsg{Index: 0})
	if view := next.View(); !strings.Contains(view, "guest.wav") {
		t.Errorf("view missing file name:\n%s", view)
	}

	next, cmd := next.Update(AnalysisCompleteMsg{Index: 0, Measurements: &processor.AudioMeasurements{NoiseFloor: -60}})
	if next.(AnalysisModel).Done {
		t.Fatal("done after first of two files")
	}
	if cmd != nil {
		t.Error("should not quit after first file")
	}

	next, _ = next.Update(AnalysisStartMsg{Index: 1})
	next, cmd = next.Update(AnalysisCompleteMsg{Index: 1, Error: errors.New("unsupported format")})
	am := next.(AnalysisModel)
	if !am.Done || cmd == nil {
		t.Fatal("analysis should finish and quit after the last file")
	}
	if len(am.Results) != 2 || am.Results[1].Path != "/tmp/host.wav" || am.Results[1].Error == nil {
		t.Errorf("unexpected results: %+v", am.Results)
	}

	view := am.View()
	for _, want := range []string{"noise floor -60.0 dBFS", "host.wav: unsupported format"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
