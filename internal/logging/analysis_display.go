// Package logging handles generation of analysis reports for processed audio files.
// This file provides console display for the analyze command.

package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/roomtone/internal/audio"
	"github.com/linuxmatters/roomtone/internal/processor"
)

// DisplayAnalysisResults outputs measurements and recording tips for one
// file to the console without processing it.
func DisplayAnalysisResults(w io.Writer, inputPath string, metadata *audio.Metadata, m *processor.AudioMeasurements) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ANALYSIS: %s\n", filepath.Base(inputPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	if metadata != nil {
		fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(metadata.Duration))
		fmt.Fprintf(w, "Sample Rate: %d Hz\n", metadata.SampleRate)
		fmt.Fprintf(w, "Channels:    %s\n", channelName(metadata.Channels))
		fmt.Fprintf(w, "Bit Depth:   %d\n", metadata.BitDepth)
		fmt.Fprintln(w)
	}

	if m.DigitalSilence {
		fmt.Fprintln(w, "  File is digital silence")
		fmt.Fprintln(w)
	}

	writeAnalysisSection(w, "LEVELS")
	fmt.Fprintf(w, "  Peak Level:     %s dBFS\n", formatMetricDB(m.PeakLevel, 1))
	fmt.Fprintf(w, "  RMS Level:      %s dBFS\n", formatMetricDB(m.RMSLevel, 1))
	fmt.Fprintf(w, "  Crest Factor:   %.1f dB\n", m.CrestFactor)
	fmt.Fprintf(w, "  Clipped:        %d samples\n", m.ClippedSamples)
	fmt.Fprintln(w)

	writeAnalysisSection(w, "NOISE")
	fmt.Fprintf(w, "  Noise Floor:    %s dBFS (%s)\n", formatMetricDB(m.NoiseFloor, 1), interpretNoiseFloor(m.NoiseFloor))
	fmt.Fprintf(w, "  Signal/Noise:   %.1f dB\n", m.SignalToNoise)
	fmt.Fprintf(w, "  Mains Hum:      %s dB at %d Hz (%s)\n",
		formatMetricSpectral(m.HumProminence, 1, m.DigitalSilence), m.MainsFrequency, interpretHum(m.HumProminence))
	fmt.Fprintln(w)

	writeAnalysisSection(w, "SPECTRUM")
	fmt.Fprintf(w, "  Centroid:       %s Hz (%s)\n",
		formatMetricSpectral(m.SpectralCentroid, 0, m.DigitalSilence), interpretCentroid(m.SpectralCentroid))
	fmt.Fprintln(w)

	writeAnalysisSection(w, "SUGGESTED SETTINGS")
	cfg := processor.DefaultConfig()
	processor.AdaptConfig(&cfg, m)
	fmt.Fprintf(w, "  Sensitivity:    %.2f\n", cfg.Sensitivity)
	fmt.Fprintf(w, "  Gate Passes:    %d\n", cfg.GatePasses)
	fmt.Fprintf(w, "  Smoothing:      %d\n", cfg.SmoothingRadius)
	fmt.Fprintln(w)

	tips := GenerateRecordingTips(m, nil)
	if len(tips) > 0 {
		writeAnalysisSection(w, "RECORDING TIPS")
		for _, tip := range tips {
			fmt.Fprintf(w, "  - %s\n", wrapText(tip.Message, 66, "    "))
		}
		fmt.Fprintln(w)
	}
}

// writeAnalysisSection writes a section header for analysis output.
func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// formatDurationHMS formats duration as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}
