package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FailureReporter receives errors that a client swallowed in favour of a
// degraded value. Reporting never changes what the client returns.
type FailureReporter interface {
	Suppressed(ctx context.Context, op string, topic string, err error)
}

// LogFailureReporter writes suppressed failures to a zap logger.
// Security violations produce a generic audit line that carries a topic
// fingerprint instead of the topic itself.
type LogFailureReporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewLogFailureReporter creates a reporter writing to logger
func NewLogFailureReporter(logger *zap.Logger) *LogFailureReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogFailureReporter{logger: logger, now: time.Now}
}

// Suppressed logs a security violation as an audit line and anything else
// as a provider warning. A nil err is ignored.
func (r *LogFailureReporter) Suppressed(ctx context.Context, op string, topic string, err error) {
	if err == nil {
		return
	}

	switch KindOf(err) {
	case KindSecurity:
		r.logger.Warn("security audit: request rejected",
			zap.String("op", op),
			zap.Int64("trace_id", r.now().UnixMilli()),
			zap.String("topic_fingerprint", TopicFingerprint(topic)),
		)
	default:
		fields := []zap.Field{
			zap.String("op", op),
			zap.String("kind", string(KindProvider)),
			zap.Error(err),
		}
		if ctx.Err() != nil {
			fields = append(fields, zap.Bool("canceled", true))
		}
		r.logger.Warn("provider call failed, using fallback", fields...)
	}
}

type nopReporter struct{}

func (nopReporter) Suppressed(context.Context, string, string, error) {}
