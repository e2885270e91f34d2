package sink

import (
	"context"

	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

// RedisSink publishes every reading on a pub/sub channel. Nothing is stored.
type RedisSink struct {
	client RedisPublisher
	prefix string
}

func NewRedisSink(client RedisPublisher, channelPrefix string) *RedisSink {
	return &RedisSink{client: client, prefix: channelPrefix}
}

func (s *RedisSink) Send(ctx context.Context, output string, msg models.Message) error {
	return s.client.Publish(ctx, s.prefix+output, msg.Payload).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
