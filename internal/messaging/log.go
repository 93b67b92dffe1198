package messaging

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes deliveries to the log. Used when no transport is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("transport")}
}

func (s *LogSender) Send(ctx context.Context, subscriberID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("delivery", zap.String("subscriber_id", subscriberID), zap.String("text", text))
	return nil
}
