package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestWriteReadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	in := make([]float64, 8000)
	for i := range in {
		in[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/16000)
	}
	in[10] = 1.7 // clipped on write

	if err := WriteWAV(path, NewWaveform(in, 16000)); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	w, meta, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}
	if meta.SampleRate != 16000 || meta.Channels != 1 || meta.BitDepth != OutputBitDepth {
		t.Errorf("metadata = %+v, want 16000 Hz mono %d-bit", meta, OutputBitDepth)
	}
	if len(w.Samples) != len(in) {
		t.Fatalf("len(Samples) = %d, want %d", len(w.Samples), len(in))
	}
	if math.Abs(meta.Duration-0.5) > 1e-9 {
		t.Errorf("Duration = %.3f, want 0.5", meta.Duration)
	}

	for i, s := range w.Samples {
		want := math.Max(-1, math.Min(1, in[i]))
		if math.Abs(float64(s)-want) > 1e-3 {
			t.Fatalf("sample %d = %.5f, want %.5f", i, s, want)
		}
	}
}

func TestReadWAVDownmixesStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, 8000, 16, 2, 1)
	// L = +0.5 FS, R = -0.25 FS → mono 0.125 FS
	data := make([]int, 200)
	for i := 0; i < len(data); i += 2 {
		data[i] = 16384
		data[i+1] = -8192
	}
	buf := &goaudio.IntBuffer{Format: &goaudio.Format{NumChannels: 2, SampleRate: 8000}, Data: data, SourceBitDepth: 16}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	f.Close()

	w, meta, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}
	if meta.Channels != 2 {
		t.Errorf("Channels = %d, want 2", meta.Channels)
	}
	if len(w.Samples) != 100 {
		t.Fatalf("len(Samples) = %d, want 100", len(w.Samples))
	}
	if math.Abs(float64(w.Samples[0])-0.125) > 1e-6 {
		t.Errorf("Samples[0] = %.6f, want 0.125", w.Samples[0])
	}
}

func writeTestWAV(t *testing.T, path string, bitDepth, format int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 8000, bitDepth, 1, format)
	buf := &goaudio.IntBuffer{Format: &goaudio.Format{NumChannels: 1, SampleRate: 8000}, Data: data, SourceBitDepth: bitDepth}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestReadWAV8BitIsCentred(t *testing.T) {
	path := filepath.Join(t.TempDir(), "8bit.wav")

	// unsigned 8-bit: 128 is silence, 192 is +0.5 FS, 64 is -0.5 FS
	data := make([]int, 1000)
	for i := range data {
		data[i] = 128
	}
	data[1] = 192
	data[2] = 64
	writeTestWAV(t, path, 8, 1, data)

	w, meta, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}
	if meta.BitDepth != 8 {
		t.Errorf("BitDepth = %d, want 8", meta.BitDepth)
	}

	tests := []struct {
		index int
		want  float64
	}{
		{0, 0},
		{1, 0.5},
		{2, -0.5},
		{999, 0},
	}
	for _, tt := range tests {
		if got := float64(w.Samples[tt.index]); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("Samples[%d] = %.4f, want %.4f", tt.index, got, tt.want)
		}
	}
}

func TestReadWAVRejectsFloatFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	writeTestWAV(t, path, 32, 3, make([]int, 100))

	if _, _, err := ReadWAV(path); err == nil {
		t.Fatal("ReadWAV() accepted an IEEE float WAV")
	}
}

func TestWaveformValidate(t *testing.T) {
	w := &Waveform{Samples: []float32{0, 0.5, float32(math.NaN())}, SampleRate: 48000}
	if err := w.Validate(); err == nil {
		t.Error("Validate() accepted a NaN sample")
	}

	w.Samples[2] = 0
	if err := w.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	w.SampleRate = 0
	if err := w.Validate(); err == nil {
		t.Error("Validate() accepted a zero sample rate")
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/tmp/take.wav"); got != "/tmp/take-denoised.wav" {
		t.Errorf("OutputPath() = %q", got)
	}
	if got := OutputPath("capture"); got != "capture-denoised.wav" {
		t.Errorf("OutputPath() = %q", got)
	}
}
