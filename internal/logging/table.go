// Package logging provides analysis report generation for processed audio files.
// This file contains the table formatting used for Input → Output metric
// comparisons.

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow represents a single row in a comparison table.
// Values are pre-formatted strings to allow for mixed formatting.
type MetricRow struct {
	Label          string   // Row label, e.g., "Noise Floor"
	Values         []string // One value per column
	Unit           string   // Unit suffix, e.g., "dBFS", "Hz", "" for unitless
	Interpretation string   // Optional interpretation text (only shown if non-empty)
}

// MetricTable formats aligned columns for metric comparison.
type MetricTable struct {
	Headers []string    // Column headers, e.g., ["Input", "Output"]
	Rows    []MetricRow // Data rows
}

// String renders the table with aligned columns.
// Labels are left-aligned and values right-aligned within their column.
// The interpretation column is only shown if a row has one.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasInterpretation := false
	for _, row := range t.Rows {
		if row.Interpretation != "" {
			hasInterpretation = true
			break
		}
	}

	labelWidth := 0
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, len(row.Label))
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) {
				valueWidths[i] = max(valueWidths[i], len(val))
			}
		}
	}

	unitWidth := 0
	for _, row := range t.Rows {
		unitWidth = max(unitWidth, len(row.Unit))
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	if unitWidth > 0 {
		sb.WriteString(strings.Repeat(" ", unitWidth+1))
	}
	if hasInterpretation {
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))

		for i := 0; i < len(t.Headers); i++ {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}

		if unitWidth > 0 {
			sb.WriteString(fmt.Sprintf("%-*s ", unitWidth, row.Unit))
		}
		if hasInterpretation {
			sb.WriteString(row.Interpretation)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// =============================================================================
// Metric Formatting Helpers
// =============================================================================

// MissingValue is the placeholder for unavailable measurements
const MissingValue = "-"

// DigitalSilenceThreshold is the dBFS level at or below which a value is
// reported as digital silence. It matches the analyser's measurement floor.
const DigitalSilenceThreshold = -120.0

// SpectralSilenceValue is shown for spectral metrics of a silent signal,
// where there is no spectrum to analyse.
const SpectralSilenceValue = "n/a"

func isDigitalSilence(value float64) bool {
	return math.IsInf(value, -1) || value <= DigitalSilenceThreshold
}

// formatMetric formats a numeric value with appropriate precision.
// Very small non-zero values use scientific notation; NaN/Inf are missing.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricDB formats a dB value, showing "< -120" at the measurement floor
func formatMetricDB(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if isDigitalSilence(value) {
		return "< -120"
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricSpectral returns "n/a" for silent signals
func formatMetricSpectral(value float64, decimals int, silent bool) string {
	if silent {
		return SpectralSilenceValue
	}
	return formatMetric(value, decimals)
}

// formatMetricSigned formats a value with explicit sign, e.g. "+2.5"
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%+.*f", decimals, value)
}

// formatMetricWithUnit combines value and unit for display.
func formatMetricWithUnit(value float64, decimals int, unit string) string {
	formatted := formatMetric(value, decimals)
	if formatted == MissingValue || unit == "" {
		return formatted
	}
	return formatted + " " + unit
}

// =============================================================================
// Table Builder Helpers
// =============================================================================

// NewMetricTable creates a new MetricTable with Input/Output headers.
func NewMetricTable() *MetricTable {
	return &MetricTable{
		Headers: []string{"Input", "Output"},
		Rows:    make([]MetricRow, 0),
	}
}

// AddRow adds a row to the table with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// AddMetricRow adds a row with numeric values, formatting them automatically.
// Pass math.NaN() for missing values.
func (t *MetricTable) AddMetricRow(label string, input, output float64, decimals int, unit string, interpretation string) {
	t.AddRow(label, []string{formatMetric(input, decimals), formatMetric(output, decimals)}, unit, interpretation)
}

// AddDBRow adds a row of dB values, showing the measurement floor as "< -120".
func (t *MetricTable) AddDBRow(label string, input, output float64, unit string, interpretation string) {
	t.AddRow(label, []string{formatMetricDB(input, 1), formatMetricDB(output, 1)}, unit, interpretation)
}

// compensateGain removes the normalisation gain from an output level in dB,
// so it can be compared with the input on the same scale. Returns NaN when
// either value is missing or the level is at the silence floor.
func compensateGain(levelDB, gainDB float64) float64 {
	if math.IsNaN(levelDB) || math.IsNaN(gainDB) || isDigitalSilence(levelDB) {
		return math.NaN()
	}
	return levelDB - gainDB
}
