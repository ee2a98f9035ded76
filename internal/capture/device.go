// Package capture records fixed-length mono buffers from an input device.
package capture

import (
	"context"
	"fmt"
)

// Device opens input streams. Implementations wrap a sound system; the
// session never talks to hardware directly.
type Device interface {
	Open(sampleRate, channels int) (Stream, error)
}

// Stream is an open input handle.
type Stream interface {
	// Fill blocks until dst is completely filled with samples, the device
	// fails, or ctx is cancelled.
	Fill(ctx context.Context, dst []float32) error
	Close() error
}

// Reporter receives capture progress in samples. Calls come from a
// dedicated goroutine and may be dropped when the reporter falls behind.
type Reporter interface {
	Report(current, total int)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(current, total int)

// Report calls f(current, total).
func (f ReporterFunc) Report(current, total int) {
	f(current, total)
}

// DeviceError is returned when the input device fails to open, read or close.
type DeviceError struct {
	Op  string // "open", "read" or "close"
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture device %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
