// internal/runner/steplog.go
package runner

import (
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
)

// StepLogger emits one START and one END line per attempt so a failed run
// can be diagnosed from logs alone, without re-running.
type StepLogger struct {
	logger  *zap.Logger
	enabled bool
}

// NewStepLogger creates a StepLogger. When disabled, both methods are no-ops.
func NewStepLogger(logger *zap.Logger, enabled bool) *StepLogger {
	return &StepLogger{logger: logger.Named("step"), enabled: enabled}
}

// Start logs the beginning of one attempt.
func (l *StepLogger) Start(index int, stepType schemas.StepType, attempt int, url string) {
	if !l.enabled {
		return
	}
	l.logger.Info("START",
		zap.Int("step", index),
		zap.String("type", string(stepType)),
		zap.Int("attempt", attempt),
		zap.String("url", url))
}

// End logs the outcome of one attempt.
func (l *StepLogger) End(index int, stepType schemas.StepType, attempt int, status schemas.StepStatus, elapsed time.Duration, url string, err error) {
	if !l.enabled {
		return
	}
	fields := []zap.Field{
		zap.Int("step", index),
		zap.String("type", string(stepType)),
		zap.Int("attempt", attempt),
		zap.String("status", string(status)),
		zap.Duration("elapsed", elapsed),
		zap.String("url", url),
	}
	if err != nil {
		fields = append(fields, zap.String("error", err.Error()))
		l.logger.Warn("END", fields...)
		return
	}
	l.logger.Info("END", fields...)
}
