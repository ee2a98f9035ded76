// Package audio provides the mono waveform type and WAV file I/O
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// OutputBitDepth is the PCM bit depth used for written files
const OutputBitDepth = 16

// wavFormatPCM is the fmt chunk tag for integer PCM
const wavFormatPCM = 1

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
}

// ReadWAV decodes a PCM WAV file into a mono waveform.
// Multi-channel input is downmixed by averaging channels.
func ReadWAV(filename string) (*Waveform, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("not a valid WAV file: %s", filename)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, nil, fmt.Errorf("unsupported WAV format %d (only integer PCM) in file: %s", decoder.WavAudioFormat, filename)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, nil, fmt.Errorf("missing channel layout in file: %s", filename)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth < 8 || bitDepth > 32 {
		return nil, nil, fmt.Errorf("unsupported bit depth %d in file: %s", bitDepth, filename)
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	fullScale := math.Pow(2, float64(bitDepth-1))
	// 8-bit PCM is unsigned, centred on 128
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}

	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) - offset
		}
		samples[i] = float32(sum / float64(channels) / fullScale)
	}

	metadata := &Metadata{
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
	}
	if metadata.SampleRate > 0 {
		metadata.Duration = float64(frames) / float64(metadata.SampleRate)
	}

	return &Waveform{Samples: samples, SampleRate: metadata.SampleRate}, metadata, nil
}

// WriteWAV encodes a waveform as 16-bit mono PCM. Samples outside [-1, 1]
// are clipped.
func WriteWAV(filename string, w *Waveform) (err error) {
	if w == nil {
		return errors.New("nothing to write: nil waveform")
	}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("refusing to write %s: %w", filename, err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	encoder := wav.NewEncoder(f, w.SampleRate, OutputBitDepth, 1, 1)

	fullScale := math.Pow(2, OutputBitDepth-1) - 1
	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		data[i] = int(math.Round(v * fullScale))
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: OutputBitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV header: %w", err)
	}

	return nil
}

// OutputPath derives the output filename from the input filename
// Example: /path/to/take.wav → /path/to/take-denoised.wav
func OutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "-denoised.wav"
}
