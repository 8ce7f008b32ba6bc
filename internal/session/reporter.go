package session

import (
	"log/slog"

	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// ErrorReporter receives errors the resolver recovered from.
// Calls are fire-and-forget and must not block.
type ErrorReporter interface {
	ReportError(context string, err error)
}

// LogReporter reports errors to a structured logger and counts them
type LogReporter struct {
	log *slog.Logger
}

// NewLogReporter creates a reporter writing to log, or slog.Default() if nil
func NewLogReporter(log *slog.Logger) *LogReporter {
	if log == nil {
		log = slog.Default()
	}
	return &LogReporter{log: log.With(slog.String("component", "session"))}
}

// ReportError implements ErrorReporter
func (r *LogReporter) ReportError(context string, err error) {
	metrics.SessionErrors.WithLabelValues(context).Inc()
	r.log.Error("session error",
		slog.String("context", context),
		slog.String("error", err.Error()))
}

// ReporterFunc adapts a function to ErrorReporter
type ReporterFunc func(context string, err error)

// ReportError implements ErrorReporter
func (f ReporterFunc) ReportError(context string, err error) {
	f(context, err)
}
