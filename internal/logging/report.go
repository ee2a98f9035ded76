// Package logging handles generation of analysis reports for processed audio files

package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/roomtone/internal/processor"
)

// ============================================================================
// Measurement Interpretation Functions
// ============================================================================

// interpretCentroid describes spectral "brightness" based on centre of gravity.
//
// Reference values for speech:
// - Male voiced speech: 500-2500 Hz
// - Female voiced speech: 800-3500 Hz
// - Unvoiced consonants: 3000-8000+ Hz
func interpretCentroid(hz float64) string {
	switch {
	case hz <= 0:
		return "no spectrum"
	case hz < 500:
		return "very dark, bass-heavy"
	case hz < 1500:
		return "warm, full-bodied"
	case hz < 2500:
		return "balanced, natural voice"
	case hz < 4000:
		return "present, forward"
	case hz < 6000:
		return "bright, crisp"
	default:
		return "very bright, noise-like"
	}
}

// interpretNoiseFloor describes the quietest part of the recording
func interpretNoiseFloor(db float64) string {
	switch {
	case isDigitalSilence(db):
		return "digital silence"
	case db < -70:
		return "very quiet room"
	case db < -55:
		return "quiet, typical home studio"
	case db < -45:
		return "audible background noise"
	default:
		return "noisy"
	}
}

// interpretHum describes how far the strongest mains harmonic stands out
func interpretHum(prominence float64) string {
	switch {
	case prominence < 6:
		return "none detected"
	case prominence < 12:
		return "faint"
	case prominence < 20:
		return "noticeable"
	default:
		return "strong"
	}
}

// interpretReduction describes how much the noise floor dropped, after
// removing the normalisation gain
func interpretReduction(db float64) string {
	switch {
	case math.IsNaN(db):
		return ""
	case db < 3:
		return "little change"
	case db < 10:
		return "moderate reduction"
	case db < 20:
		return "good reduction"
	default:
		return "strong reduction"
	}
}

// =============================================================================
// Report Section Formatting Helpers
// =============================================================================

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate an analysis report
type ReportData struct {
	InputPath   string // Empty for a microphone capture
	OutputPath  string
	StartTime   time.Time
	EndTime     time.Time
	CaptureTime time.Duration // Zero for file input
	DenoiseTime time.Duration
	Result      *processor.ProcessingResult
}

// ReportPath returns the report filename for an output file:
// take1-denoised.wav → take1-denoised.log
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport creates an analysis report and saves it alongside the
// output file.
//
// Report structure:
// 1. Header - source, timestamp and duration
// 2. Processing Summary - stage timings
// 3. Noise Reduction - settings, noise reference and per-pass statistics
// 4. Level Measurements - Input/Output table
// 5. Spectral Measurements - Input/Output table
// 6. Recording Tips
func GenerateReport(data ReportData) error {
	f, err := os.Create(ReportPath(data.OutputPath))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReport(f, data)
	return nil
}

func writeReport(w io.Writer, data ReportData) {
	writeReportHeader(w, data)
	writeProcessingSummary(w, data)

	if data.Result == nil {
		return
	}

	writeNoiseReduction(w, data.Result)
	writeLevelTable(w, data.Result)
	writeSpectralTable(w, data.Result)
	writeRecordingTips(w, GenerateRecordingTips(data.Result.Input, data.Result.Denoise))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}

// =============================================================================
// Report Section Writers
// =============================================================================

func writeReportHeader(w io.Writer, data ReportData) {
	fmt.Fprintln(w, "Roomtone Analysis Report")
	fmt.Fprintln(w, "========================")
	if data.InputPath != "" {
		fmt.Fprintf(w, "File: %s\n", filepath.Base(data.InputPath))
	} else {
		fmt.Fprintln(w, "Source: microphone capture")
	}
	fmt.Fprintf(w, "Output: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if data.Result != nil && data.Result.Output != nil {
		fmt.Fprintf(w, "Duration: %s at %d Hz\n",
			formatDuration(time.Duration(data.Result.Output.Duration()*float64(time.Second))),
			data.Result.Output.SampleRate)
	}
	fmt.Fprintln(w, "")
}

func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")

	if data.CaptureTime > 0 {
		fmt.Fprintf(w, "Capture:   %s\n", formatDuration(data.CaptureTime))
	}
	fmt.Fprintf(w, "Denoise:   %s\n", formatDuration(data.DenoiseTime))

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "Total:     %s", formatDuration(totalTime))
	if data.Result != nil && data.Result.Output != nil && data.DenoiseTime > 0 {
		audioDuration := time.Duration(data.Result.Output.Duration() * float64(time.Second))
		fmt.Fprintf(w, " (%.0fx real-time)", float64(audioDuration)/float64(data.DenoiseTime))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

func writeNoiseReduction(w io.Writer, result *processor.ProcessingResult) {
	writeSection(w, "Noise Reduction")

	cfg := result.Config
	mode := "fixed"
	if cfg.Adaptive {
		mode = "adaptive"
	}
	fmt.Fprintf(w, "Settings:        %s\n", mode)
	fmt.Fprintf(w, "Transform Size:  %d samples\n", cfg.TransformSize)
	fmt.Fprintf(w, "Sensitivity:     %.2f (threshold = mean + %.2f x std)\n", cfg.Sensitivity, cfg.Sensitivity)
	fmt.Fprintf(w, "Smoothing:       %d x %d kernel\n", cfg.KernelSize(), cfg.KernelSize())

	d := result.Denoise
	if d == nil {
		fmt.Fprintln(w, "")
		return
	}

	sampleRate := float64(result.Output.SampleRate)
	refLength := float64(d.NoiseLength) / sampleRate
	if d.NoiseOffset < 0 {
		fmt.Fprintf(w, "Noise Reference: %.2fs supplied\n", refLength)
	} else {
		fmt.Fprintf(w, "Noise Reference: %.2fs at %.2fs (quietest segment)\n", refLength, float64(d.NoiseOffset)/sampleRate)
	}

	if d.Degenerate {
		fmt.Fprintln(w, "Normalisation:   skipped (output is digital silence)")
	} else {
		fmt.Fprintf(w, "Normalisation:   %s dB to %.2f peak\n", formatMetricSigned(processor.LinearToDb(d.Gain), 1), processor.PeakTarget)
	}
	fmt.Fprintln(w, "")

	if len(d.Passes) > 0 {
		table := &MetricTable{Headers: []string{"Active Cells", "Mask Mean"}}
		for _, p := range d.Passes {
			active := float64(p.ActiveCells) / float64(max(1, p.TotalCells)) * 100
			table.AddRow(fmt.Sprintf("Pass %d", p.Pass), []string{
				formatMetric(active, 1) + "%",
				formatMetric(p.MaskMean, 3),
			}, "", "")
		}
		fmt.Fprint(w, table.String())
		fmt.Fprintln(w, "")
	}
}

func writeLevelTable(w io.Writer, result *processor.ProcessingResult) {
	in, out := result.Input, result.Final
	if in == nil || out == nil {
		return
	}

	writeSection(w, "Level Measurements")

	table := NewMetricTable()
	table.AddDBRow("Peak Level", in.PeakLevel, out.PeakLevel, "dBFS", "")
	table.AddDBRow("RMS Level", in.RMSLevel, out.RMSLevel, "dBFS", "")
	table.AddDBRow("Noise Floor", in.NoiseFloor, out.NoiseFloor, "dBFS", interpretNoiseFloor(out.NoiseFloor))

	gainDB := math.NaN()
	if result.Denoise != nil && !result.Denoise.Degenerate {
		gainDB = processor.LinearToDb(result.Denoise.Gain)
	}
	compensated := compensateGain(out.NoiseFloor, gainDB)
	reduction := math.NaN()
	if !math.IsNaN(compensated) && !isDigitalSilence(in.NoiseFloor) {
		reduction = in.NoiseFloor - compensated
	}
	table.AddRow("Noise Floor (pre-gain)", []string{formatMetricDB(in.NoiseFloor, 1), formatMetricDB(compensated, 1)}, "dBFS", interpretReduction(reduction))

	table.AddMetricRow("Signal to Noise", in.SignalToNoise, out.SignalToNoise, 1, "dB", "")
	table.AddMetricRow("Crest Factor", in.CrestFactor, out.CrestFactor, 1, "dB", "")
	table.AddRow("Clipped Samples", []string{fmt.Sprint(in.ClippedSamples), fmt.Sprint(out.ClippedSamples)}, "", "")

	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

func writeSpectralTable(w io.Writer, result *processor.ProcessingResult) {
	in, out := result.Input, result.Final
	if in == nil || out == nil {
		return
	}

	writeSection(w, "Spectral Measurements")

	table := NewMetricTable()
	table.AddRow("Spectral Centroid", []string{
		formatMetricSpectral(in.SpectralCentroid, 0, in.DigitalSilence),
		formatMetricSpectral(out.SpectralCentroid, 0, out.DigitalSilence),
	}, "Hz", interpretCentroid(out.SpectralCentroid))
	table.AddRow(fmt.Sprintf("Mains Hum (%d Hz)", in.MainsFrequency), []string{
		formatMetricSpectral(in.HumProminence, 1, in.DigitalSilence),
		formatMetricSpectral(out.HumProminence, 1, out.DigitalSilence),
	}, "dB", interpretHum(out.HumProminence))

	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

func writeRecordingTips(w io.Writer, tips []RecordingTip) {
	writeSection(w, "Recording Tips")

	if len(tips) == 0 {
		fmt.Fprintln(w, "No issues found - nice recording.")
		return
	}
	for i, tip := range tips {
		fmt.Fprintf(w, "%d. %s\n", i+1, wrapText(tip.Message, 72, "   "))
	}
}
