package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a printf-style facade over a zap SugaredLogger.
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
}

// New builds a JSON logger at the given level. An empty file logs to stdout.
func New(file string, level string) (*Logger, error) {
	outputPaths := []string{"stdout"}
	errorOutputPaths := []string{"stderr"}
	if file != "" {
		outputPaths = []string{file}
		errorOutputPaths = []string{"stderr", file}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorOutputPaths,
	}

	// Skip the facade frame so "caller" points at the real call site.
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logger: build zap logger: %w", err)
	}

	return &Logger{zap: z, sugar: z.Sugar()}, nil
}

// NewFromZap wraps an existing zap logger, e.g. zaptest or zap.NewNop in tests.
func NewFromZap(z *zap.Logger) *Logger {
	return &Logger{zap: z, sugar: z.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// Zap exposes the underlying logger for libraries that take *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// Close flushes buffered entries.
func (l *Logger) Close() error {
	err := l.zap.Sync()
	// Sync on stdout/stderr fails with EINVAL/ENOTTY on most platforms.
	if err != nil && isStdSyncError(err) {
		return nil
	}
	return err
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func isStdSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, os.Stdout.Name()) || strings.Contains(msg, os.Stderr.Name()) ||
		strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
