// Package log is the structured logger shared by the hopus packages.
//
// Records are a message plus alternating key/value fields, in the style of
// log/slog, written as JSON lines by zerolog. Each package asks for a named
// logger and adds step context with With:
//
//	logger := log.GetLoggerWithName("preprocessing").With(log.PipelineStepKey, "drop_outliers")
//	logger.Info("Dropped outliers", log.DroppedRowsKey, 12, log.SamplesKey, 1688)
//
// Warnings raised through pkg/errors.Warn are logged under the "warnings"
// component once this package is imported.
package log

import (
	"context"
)

// Logger is implemented by the zerolog adapter returned from New and
// GetLogger, and by TestLogger.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)

	// Error logs at error level. When the first field is an error it becomes
	// the record's error, with its stack trace if cockroachdb/errors recorded
	// one:
	//
	//	logger.Error("Experiment failed", err, log.ModelNameKey, "ridge")
	Error(msg string, fields ...any)

	// With returns a child logger that adds fields to every record.
	With(fields ...any) Logger

	Enabled(ctx context.Context, level Level) bool
}

// Level uses the slog numbering so levels can be compared directly.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}
