package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linuxmatters/roomtone/internal/audio"
)

// DefaultProgressInterval is how often progress is reported during capture
const DefaultProgressInterval = 500 * time.Millisecond

// Request describes one capture
type Request struct {
	DurationSeconds int
	SampleRate      int
}

// Samples returns the number of mono samples the request covers
func (r Request) Samples() int {
	return r.DurationSeconds * r.SampleRate
}

// deviceLocks holds one mutex per Device value, shared by every Session
// wrapping that device.
var deviceLocks sync.Map // Device → *sync.Mutex

func lockFor(device Device) *sync.Mutex {
	mu, _ := deviceLocks.LoadOrStore(device, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Session captures from an input device. Captures are serialised per
// device, across all sessions built on it: the device is held exclusively
// from open to close. device must be comparable, normally a pointer.
type Session struct {
	device           Device
	logger           *zap.Logger
	progressInterval time.Duration

	mu *sync.Mutex
}

// NewSession creates a session for device. logger may be nil.
func NewSession(device Device, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		device:           device,
		logger:           logger,
		progressInterval: DefaultProgressInterval,
		mu:               lockFor(device),
	}
}

// SetProgressInterval changes the progress reporting period
func (s *Session) SetProgressInterval(d time.Duration) {
	if d > 0 {
		s.progressInterval = d
	}
}

// Capture records req.Samples() mono samples, blocking for the capture
// duration.
//
// When trigger is false nothing is recorded and Capture returns (nil, nil).
// Progress goes to reporter (which may be nil) and never holds up the
// device. Device failures return a *DeviceError; cancellation of ctx returns
// the context error. No partial buffer is ever returned.
func (s *Session) Capture(ctx context.Context, trigger bool, req Request, reporter Reporter) (*audio.Waveform, error) {
	if !trigger {
		s.logger.Debug("capture not triggered")
		return nil, nil
	}

	total := req.Samples()
	if total <= 0 || req.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid capture request: %d s at %d Hz", req.DurationSeconds, req.SampleRate)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("capture cancelled before start: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream, err := s.device.Open(req.SampleRate, 1)
	if err != nil {
		return nil, &DeviceError{Op: "open", Err: err}
	}
	closed := false
	defer func() {
		if !closed {
			_ = stream.Close()
		}
	}()

	s.logger.Info("capture started",
		zap.Int("duration_seconds", req.DurationSeconds),
		zap.Int("sample_rate", req.SampleRate))

	buf := make([]float32, total)
	stop := s.startProgress(total, req.SampleRate, reporter)
	fillErr := stream.Fill(ctx, buf)

	closed = true
	closeErr := stream.Close()
	stop(fillErr == nil && closeErr == nil)

	if fillErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(fillErr, ctxErr) {
			s.logger.Info("capture cancelled", zap.Error(fillErr))
			return nil, fmt.Errorf("capture cancelled: %w", fillErr)
		}
		s.logger.Error("capture failed", zap.Error(fillErr))
		return nil, &DeviceError{Op: "read", Err: fillErr}
	}
	if closeErr != nil {
		s.logger.Error("capture device close failed", zap.Error(closeErr))
		return nil, &DeviceError{Op: "close", Err: closeErr}
	}

	s.logger.Info("capture complete", zap.Int("samples", total))
	return &audio.Waveform{Samples: buf, SampleRate: req.SampleRate}, nil
}

// startProgress reports elapsed capture time as a sample count until the
// returned stop function is called. Updates pass through a one-slot channel
// that keeps only the newest value, so a slow reporter loses ticks instead
// of blocking. stop waits for the reporter to drain; completed adds a final
// (total, total) report.
func (s *Session) startProgress(total, sampleRate int, reporter Reporter) func(completed bool) {
	if reporter == nil {
		return func(bool) {}
	}

	updates := make(chan int, 1)
	publish := func(current int) {
		// Single sender: after the drain there is always room
		select {
		case <-updates:
		default:
		}
		updates <- current
	}

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for current := range updates {
			reporter.Report(current, total)
		}
	}()

	done := make(chan struct{})
	ticked := make(chan struct{})
	start := time.Now()
	go func() {
		defer close(ticked)
		ticker := time.NewTicker(s.progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				current := int(time.Since(start).Seconds() * float64(sampleRate))
				publish(min(current, total))
			}
		}
	}()

	return func(completed bool) {
		close(done)
		<-ticked
		if completed {
			publish(total)
		}
		close(updates)
		<-dispatched
	}
}
