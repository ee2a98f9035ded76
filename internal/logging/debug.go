package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugLogName is the file written by --debug in the working directory
const DebugLogName = "roomtone-debug.log"

// NewDebugLogger returns a JSON logger writing debug and above to path,
// and a function that flushes and closes the file. The terminal belongs to
// the UI, so nothing is written to stdout or stderr.
func NewDebugLogger(path string) (*zap.Logger, func(), error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open debug log %s: %w", path, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(file),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
	logger := zap.New(core, zap.AddCaller())

	stop := func() {
		_ = logger.Sync()
		_ = file.Close()
	}
	return logger, stop, nil
}
