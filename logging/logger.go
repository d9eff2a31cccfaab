// logging/logger.go

package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log starts as a no-op logger so packages can log before InitLogger runs.
var Log = zap.NewNop()

// Options controls where and how much InitLogger writes.
type Options struct {
	Dir string
	// Level is a zap level name; LOG_LEVEL in the environment wins over it.
	Level string
	// Console switches to the human readable encoder.
	Console bool
}

func parseLevel(names ...string) zapcore.Level {
	for _, name := range names {
		if name == "" {
			continue
		}
		if level, err := zapcore.ParseLevel(name); err == nil {
			return level
		}
	}
	return zapcore.InfoLevel
}

func InitLogger(opts Options) {
	config := zap.NewProductionConfig()
	config.Level.SetLevel(parseLevel(os.Getenv("LOG_LEVEL"), opts.Level))
	if opts.Console {
		config.Encoding = "console"
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		panic(err)
	}

	config.OutputPaths = []string{"stdout", filepath.Join(opts.Dir, "cache.log")}
	config.ErrorOutputPaths = []string{"stderr", filepath.Join(opts.Dir, "cache_error.log")}

	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.StacktraceKey = "stacktrace"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	Log, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(Log)
}

// Log methods for different levels
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

// WithContext adds context fields to the logger
func WithContext(fields ...zap.Field) *zap.Logger {
	return Log.With(fields...)
}

// Enabled reports whether messages at level would be written.
func Enabled(level zapcore.Level) bool {
	return Log.Core().Enabled(level)
}

func Sync() error {
	return Log.Sync()
}
