package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DefaultFramesPerBuffer is the PortAudio read size. Cancellation is checked
// between reads, so this bounds how long a cancelled capture keeps running.
const DefaultFramesPerBuffer = 1024

// PortAudioDevice captures from the system default input device.
type PortAudioDevice struct {
	FramesPerBuffer int
}

// Open initialises PortAudio and starts a blocking input stream.
func (d *PortAudioDevice) Open(sampleRate, channels int) (Stream, error) {
	frames := d.FramesPerBuffer
	if frames <= 0 {
		frames = DefaultFramesPerBuffer
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialise portaudio: %w", err)
	}

	buf := make([]float32, frames*channels)
	stream, err := portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), frames, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	return &portAudioStream{stream: stream, buf: buf, channels: channels}, nil
}

type portAudioStream struct {
	stream   *portaudio.Stream
	buf      []float32
	channels int
}

// Fill reads whole device buffers until dst is full, keeping the first
// channel of each frame.
func (s *portAudioStream) Fill(ctx context.Context, dst []float32) error {
	for n := 0; n < len(dst); {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.stream.Read(); err != nil {
			// includes input overflow (dropped samples)
			return fmt.Errorf("read input stream: %w", err)
		}
		for i := 0; i < len(s.buf) && n < len(dst); i += s.channels {
			dst[n] = s.buf[i]
			n++
		}
	}
	return nil
}

// Close stops the stream and releases PortAudio. Every step runs even if an
// earlier one fails.
func (s *portAudioStream) Close() error {
	return errors.Join(s.stream.Stop(), s.stream.Close(), portaudio.Terminate())
}
