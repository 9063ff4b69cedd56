package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with request and domain helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new JSON logger.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{Logger: slog.New(handler)}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ConfigurationLogger logs an incentive configuration computation.
func (l *Logger) ConfigurationLogger(respondentID string, cached bool, duration time.Duration) {
	l.Info("Incentive configuration",
		"respondent_id", respondentID,
		"cached", cached,
		"duration_ms", duration.Milliseconds(),
	)
}

// VignetteLogger logs a vignette enumeration.
func (l *Logger) VignetteLogger(studyID int64, count int, duration time.Duration) {
	l.Info("Vignette enumeration",
		"study_id", studyID,
		"vignettes", count,
		"duration_ms", duration.Milliseconds(),
	)
}
