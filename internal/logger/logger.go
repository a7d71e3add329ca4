// Package logger provides structured logging for targets2config using zap.
//
// Logs go to stderr by default so that command reports written to stdout
// stay machine readable.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/targets2config/internal/config"
)

// Logger wraps zap.SugaredLogger with context methods.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New creates a Logger from configuration. A log file that cannot be opened
// is an error.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, parseLevel(cfg.Level))
	return wrap(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))), nil
}

// NewDefault creates a Logger at info level writing text to stderr.
func NewDefault() *Logger {
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	if err != nil {
		return NewNop()
	}
	return logger
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return wrap(zap.NewNop())
}

func wrap(base *zap.Logger) *Logger {
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

// parseLevel maps a configured level name onto zap, defaulting to info.
func parseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return parsed
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	ec.FunctionKey = zapcore.OmitKey

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// openSink resolves "stdout", "stderr" (the default) or a file path. File
// output is mirrored to stderr.
func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr", "":
		return zapcore.Lock(os.Stderr), nil
	}

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
	}
	return zapcore.NewMultiWriteSyncer(zapcore.AddSync(file), zapcore.Lock(os.Stderr)), nil
}

func (l *Logger) with(key string, value any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(key, value), base: l.base}
}

// WithRun tags entries with the conversion run ID.
func (l *Logger) WithRun(runID string) *Logger { return l.with("run", runID) }

// WithDirectory tags entries with the directory being converted.
func (l *Logger) WithDirectory(dir string) *Logger { return l.with("directory", dir) }

// WithTarget tags entries with a build target identifier.
func (l *Logger) WithTarget(target string) *Logger { return l.with("target", target) }

// WithCommand tags entries with an external command name.
func (l *Logger) WithCommand(name string) *Logger { return l.with("command", name) }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
