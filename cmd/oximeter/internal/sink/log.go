package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

// LogSink writes messages to the logger instead of a broker. Local runs only.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, output string, msg models.Message) error {
	s.logger.Info("Message",
		zap.String("output", output),
		zap.String("content_type", msg.ContentType),
		zap.String("content_encoding", msg.ContentEncoding),
		zap.ByteString("payload", msg.Payload),
	)
	return nil
}

func (s *LogSink) Close() error {
	_ = s.logger.Sync() // fails harmlessly on some terminals
	return nil
}
