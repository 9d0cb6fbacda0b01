// Package logger builds the zap logger used by pawsctl. The server uses
// internal/observability/logger instead.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr, leaving stdout for command
// output such as generated codes.
func New(level string) (*zap.Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

func NewWithWriter(level string, w io.Writer) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if text := strings.TrimSpace(level); text != "" {
		if err := lvl.UnmarshalText([]byte(text)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", text, err)
		}
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.CallerKey = ""
	enc.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), lvl)
	log := zap.New(core, zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(w))))
	zap.ReplaceGlobals(log)
	return log, nil
}
