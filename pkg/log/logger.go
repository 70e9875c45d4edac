// Package log provides structured logging for fairness pipeline runs.
//
// It is a thin front end over Go's log/slog with two additions: attribute
// renaming to the CloudLogging field names used by our deployments, and a
// wrapping handler that extracts stack traces from cockroachdb/errors values
// so that cleaning, fitting and mitigation failures are diagnosable from the
// log stream alone. Audit-relevant events (rows dropped during cleaning,
// achieved fairness gaps) use the standard keys in attributes.go.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger configures the process-wide default slog logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel converts a level name into a slog.Level.
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

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// RunLogger returns a logger carrying the run identifier, so every record
// emitted by one experiment run can be correlated.
func RunLogger(runID string) *slog.Logger {
	return slog.Default().With(slog.String(RunIDKey, runID))
}
