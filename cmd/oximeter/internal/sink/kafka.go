package sink

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

const (
	headerContentType     = "content-type"
	headerContentEncoding = "content-encoding"
	headerOutput          = "output"
)

type KafkaSink struct {
	writer KafkaWriter
	key    []byte
}

func NewKafkaSink(writer KafkaWriter, deviceID string) *KafkaSink {
	return &KafkaSink{writer: writer, key: []byte(deviceID)}
}

func (s *KafkaSink) Send(ctx context.Context, output string, msg models.Message) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   s.key, // one device, one partition
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: headerContentType, Value: []byte(msg.ContentType)},
			{Key: headerContentEncoding, Value: []byte(msg.ContentEncoding)},
			{Key: headerOutput, Value: []byte(output)},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
