// Package log provides structured logging for tabgo preprocessing
// operations, built on log/slog with stacktrace extraction for
// cockroachdb/errors and a zerolog bridge for the warning system.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog logger as the process default.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

// GetLoggerWithName returns the default logger scoped to a component name.
func GetLoggerWithName(name string) *slog.Logger {
	return slog.Default().With(ComponentKey, name)
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
