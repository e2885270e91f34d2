package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/iot-operations-sdks/go/mqtt"
	"github.com/Azure/iot-operations-sdks/go/protocol"
	"go.uber.org/zap"

	"github.com/shubham-shewale/oximeter-sim/pkg/config"
	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

const (
	outputToken   = "output"
	deviceIDToken = "deviceId"

	// MQTT v5 payload format indicator for UTF-8 text
	payloadFormatUTF8 byte = 1
)

// EdgeSink publishes telemetry through the edge runtime's MQTT broker.
type EdgeSink struct {
	sender  TelemetrySender
	timeout time.Duration
	stop    func() error
}

func NewEdgeSink(sender TelemetrySender, timeout time.Duration, stop func() error) *EdgeSink {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &EdgeSink{sender: sender, timeout: timeout, stop: stop}
}

// DialEdge connects a session client configured from the AIO_* environment
// provided by the edge runtime.
func DialEdge(logger *zap.Logger, cfg config.EdgeConfig, deviceID string) (*EdgeSink, error) {
	slogger := config.Slog(logger)

	app, err := protocol.NewApplication(protocol.WithLogger(slogger))
	if err != nil {
		return nil, fmt.Errorf("create protocol application: %w", err)
	}

	client, err := mqtt.NewSessionClientFromEnv(mqtt.WithLogger(slogger))
	if err != nil {
		return nil, fmt.Errorf("create edge session client: %w", err)
	}

	sender, err := protocol.NewTelemetrySender[*protocol.Data](
		app,
		client,
		protocol.Data{},
		cfg.TopicPattern,
		protocol.WithTopicTokens{deviceIDToken: deviceID},
		protocol.WithLogger(slogger),
	)
	if err != nil {
		return nil, fmt.Errorf("create telemetry sender: %w", err)
	}

	connDone := client.RegisterConnectEventHandler(func(e *mqtt.ConnectEvent) {
		logger.Info("Edge session connected", zap.Uint8("reason_code", e.ReasonCode))
	})
	disconnDone := client.RegisterDisconnectEventHandler(func(e *mqtt.DisconnectEvent) {
		logger.Warn("Edge session disconnected", zap.Error(e.Error))
	})

	if err := client.Start(); err != nil {
		connDone()
		disconnDone()
		return nil, fmt.Errorf("start edge session: %w", err)
	}
	logger.Info("Edge session client initialized", zap.String("topic_pattern", cfg.TopicPattern))

	return NewEdgeSink(sender, cfg.Timeout, func() error {
		connDone()
		disconnDone()
		return client.Stop()
	}), nil
}

func (s *EdgeSink) Send(ctx context.Context, output string, msg models.Message) error {
	data := &protocol.Data{
		Payload:     msg.Payload,
		ContentType: msg.ContentType,
	}
	if msg.ContentEncoding == models.EncodingUTF8 {
		data.PayloadFormat = payloadFormatUTF8
	}

	return s.sender.Send(ctx, data,
		protocol.WithTopicTokens{outputToken: output},
		protocol.WithMetadata{"contentEncoding": msg.ContentEncoding},
		protocol.WithTimeout(s.timeout),
	)
}

func (s *EdgeSink) Close() error {
	if s.stop == nil {
		return nil
	}
	return s.stop()
}
