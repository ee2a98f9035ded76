package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/roomtone/internal/processor"
)

// RecordingTip represents a single piece of actionable recording advice
// derived from audio analysis measurements.
type RecordingTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "level_too_quiet")
}

// MaxRecordingTips is the maximum number of tips to return.
const MaxRecordingTips = 5

// tipRule inspects input measurements and, when available, the denoise run
type tipRule func(*processor.AudioMeasurements, *processor.DenoiseResult) *RecordingTip

// GenerateRecordingTips analyses input measurements and returns prioritised
// recording improvement suggestions. result may be nil for analysis-only runs.
func GenerateRecordingTips(m *processor.AudioMeasurements, result *processor.DenoiseResult) []RecordingTip {
	if m == nil {
		return nil
	}

	var tips []RecordingTip
	firedRules := make(map[string]bool)

	rules := []tipRule{
		tipDigitalSilence,
		tipLevelTooHot,
		tipLevelTooQuiet,
		tipLevelQuiet,
		tipBackgroundNoise,
		tipMainsHum,
		tipOverCompressed,
		tipPoorSNR,
		tipHeavyGating,
	}

	for _, rule := range rules {
		if tip := rule(m, result); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, firedRules)

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. Digital silence makes every other tip meaningless.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	var result []RecordingTip
	for _, tip := range tips {
		switch {
		case fired["digital_silence"] && tip.RuleID != "digital_silence":
			continue
		case tip.RuleID == "level_too_quiet" || tip.RuleID == "level_quiet":
			if fired["level_clipping"] || fired["level_near_clipping"] {
				continue
			}
		case tip.RuleID == "background_noise_moderate":
			if fired["poor_snr"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// tipDigitalSilence fires when every captured sample is zero, which usually
// means the wrong input is selected or it is muted.
func tipDigitalSilence(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if !m.DigitalSilence {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "digital_silence",
		Message:  "Nothing was captured - check that the right microphone is selected as the default input and that it isn't muted.",
	}
}

// tipLevelTooQuiet fires when the overall RMS is below -42 dBFS.
// Gain target is -24 dBFS RMS.
func tipLevelTooQuiet(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if m.RMSLevel >= -42.0 {
		return nil
	}
	gainNeeded := -24.0 - m.RMSLevel
	return &RecordingTip{
		Priority: 10,
		RuleID:   "level_too_quiet",
		Message:  fmt.Sprintf("Your microphone gain is too low - try increasing it by about %.0f dB.", gainNeeded),
	}
}

// tipLevelQuiet fires when the overall RMS is between -42 and -36 dBFS.
func tipLevelQuiet(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if m.RMSLevel < -42.0 || m.RMSLevel >= -36.0 {
		return nil
	}
	gainNeeded := -24.0 - m.RMSLevel
	return &RecordingTip{
		Priority: 8,
		RuleID:   "level_quiet",
		Message:  fmt.Sprintf("Your recording is a bit quiet - increasing your microphone gain by about %.0f dB would improve quality.", gainNeeded),
	}
}

// tipLevelTooHot fires on clipped samples or a peak within 1 dB of full scale
func tipLevelTooHot(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if m.ClippedSamples > 0 {
		return &RecordingTip{
			Priority: 10,
			RuleID:   "level_clipping",
			Message:  fmt.Sprintf("Your recording is clipping (%d samples at full scale) - turn your microphone gain down by 6-10 dB to prevent distortion.", m.ClippedSamples),
		}
	}
	if m.PeakLevel <= -1.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 9,
		RuleID:   "level_near_clipping",
		Message:  "Your recording is very close to clipping - turn your microphone gain down by 3-6 dB to give yourself some headroom.",
	}
}

// tipBackgroundNoise fires when the noise floor is elevated.
func tipBackgroundNoise(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if m.NoiseFloor > -45.0 {
		return &RecordingTip{
			Priority: 9,
			RuleID:   "background_noise_high",
			Message:  fmt.Sprintf("Background noise is high (%.0f dBFS) - try turning off fans, air conditioning, or other appliances before recording.", m.NoiseFloor),
		}
	}
	if m.NoiseFloor > -55.0 {
		return &RecordingTip{
			Priority: 6,
			RuleID:   "background_noise_moderate",
			Message:  fmt.Sprintf("Background noise is slightly elevated (%.0f dBFS) - if possible, turn off any fans or appliances nearby.", m.NoiseFloor),
		}
	}
	return nil
}

// tipMainsHum fires when a mains harmonic stands at least 12 dB above the
// spectrum around it and the noise is audible (> -65 dBFS).
func tipMainsHum(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if m.HumProminence < 12.0 || m.NoiseFloor < -65.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		RuleID:   "mains_hum",
		Message:  fmt.Sprintf("There's a constant %d Hz hum in your recording - check for nearby power supplies, monitors, or chargers and move them further from your microphone.", m.MainsFrequency),
	}
}

// tipOverCompressed fires when the crest factor is below 6 dB.
// CrestFactor == 0 is treated as unmeasured and skipped.
func tipOverCompressed(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if m.CrestFactor >= 6.0 || m.CrestFactor == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "over_compressed",
		Message:  "Your recording sounds heavily compressed, possibly by automatic gain control. If your microphone software has an 'AGC' or 'auto-level' setting, try turning it off and setting the gain manually.",
	}
}

// tipPoorSNR fires when the signal sits less than 10 dB above the noise floor.
// SignalToNoise == 0 is treated as unmeasured and skipped.
func tipPoorSNR(m *processor.AudioMeasurements, _ *processor.DenoiseResult) *RecordingTip {
	if m.SignalToNoise >= 10.0 || m.SignalToNoise == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		RuleID:   "poor_snr",
		Message:  "The gap between your voice and the background noise is very small. Move closer to your microphone and reduce background noise if possible.",
	}
}

// tipHeavyGating fires when the final mask kept less than a fifth of the
// spectrogram, meaning most of the recording was treated as noise.
func tipHeavyGating(_ *processor.AudioMeasurements, result *processor.DenoiseResult) *RecordingTip {
	if result == nil || result.Degenerate || len(result.Passes) == 0 {
		return nil
	}
	last := result.Passes[len(result.Passes)-1]
	if last.MaskMean >= 0.2 {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "heavy_gating",
		Message:  fmt.Sprintf("Only %.0f%% of the recording survived noise gating. If speech sounds thin, lower the sensitivity or speak closer to the microphone.", last.MaskMean*100),
	}
}
