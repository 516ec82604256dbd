package logging

import "go.uber.org/zap"

// Reporter adapts a Logger to domain.Reporter. Zap has no success level, so
// success is logged at info with status=success.
type Reporter struct {
	logger *Logger
}

func NewReporter(logger *Logger) *Reporter {
	return &Reporter{logger: logger}
}

func (r *Reporter) Info(msg string, fields ...zap.Field) {
	r.logger.Info(msg, fields...)
}

func (r *Reporter) Success(msg string, fields ...zap.Field) {
	r.logger.Info(msg, append(fields, zap.String("status", "success"))...)
}

func (r *Reporter) Error(msg string, fields ...zap.Field) {
	r.logger.Error(msg, fields...)
}
