package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Azure/iot-operations-sdks/go/protocol"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"

	"github.com/shubham-shewale/oximeter-sim/cmd/oximeter/internal/sink"
	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

type SentMessage struct {
	Output string
	models.Message
}

// MockSink records every send. FailAfter > 0 makes the n-th and later sends fail.
type MockSink struct {
	Messages   []SentMessage
	Mu         sync.Mutex
	ShouldFail bool
	FailAfter  int
	Closed     bool
}

func (m *MockSink) Send(ctx context.Context, output string, msg models.Message) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.ShouldFail || (m.FailAfter > 0 && len(m.Messages)+1 >= m.FailAfter) {
		return errors.New("sink error")
	}
	m.Messages = append(m.Messages, SentMessage{Output: output, Message: msg})
	return nil
}

func (m *MockSink) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}

func (m *MockSink) Sent() []SentMessage {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return append([]SentMessage(nil), m.Messages...)
}

// MockClock fires every wait immediately and advances virtual time.
type MockClock struct {
	CurrentTime time.Time
	Waits       []time.Duration
	Mu          sync.Mutex
}

func (m *MockClock) Now() time.Time {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.CurrentTime
}

func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Waits = append(m.Waits, d)
	m.CurrentTime = m.CurrentTime.Add(d)
	ch := make(chan time.Time, 1)
	ch <- m.CurrentTime
	return ch
}

// BlockingClock never fires; Waiting receives once per wait entered.
type BlockingClock struct {
	CurrentTime time.Time
	Waiting     chan time.Duration
}

func NewBlockingClock(now time.Time) *BlockingClock {
	return &BlockingClock{CurrentTime: now, Waiting: make(chan time.Duration, 16)}
}

func (b *BlockingClock) Now() time.Time { return b.CurrentTime }

func (b *BlockingClock) After(d time.Duration) <-chan time.Time {
	b.Waiting <- d
	return make(chan time.Time)
}

// MockRand returns Seq in order (cycling), or ValInt when Seq is empty.
type MockRand struct {
	ValInt int
	Seq    []int
	calls  int
	Ns     []int
}

func (m *MockRand) Intn(n int) int {
	m.Ns = append(m.Ns, n)
	if len(m.Seq) == 0 {
		return m.ValInt
	}
	v := m.Seq[m.calls%len(m.Seq)]
	m.calls++
	return v
}

type MockRecorder struct {
	Values []float64
	Errors []error
	Mu     sync.Mutex
}

func (m *MockRecorder) ObserveSend(value float64, _ time.Duration, err error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Values = append(m.Values, value)
	m.Errors = append(m.Errors, err)
}

type MockKafkaWriter struct {
	Messages   []kafka.Message
	Mu         sync.Mutex
	ShouldFail bool
	Closed     bool
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.ShouldFail {
		return errors.New("kafka error")
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockKafkaWriter) Close() error {
	m.Closed = true
	return nil
}

type MockKafkaConn struct {
	CreatedTopics []string
	NotReady      bool
}

func (m *MockKafkaConn) Controller() (kafka.Broker, error) {
	return kafka.Broker{Host: "localhost", Port: 9092}, nil
}
func (m *MockKafkaConn) Close() error { return nil }
func (m *MockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	for _, t := range topics {
		m.CreatedTopics = append(m.CreatedTopics, t.Topic)
	}
	return nil
}
func (m *MockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.NotReady {
		return nil, nil
	}
	return []kafka.Partition{{ID: 0}}, nil
}

type MockKafkaDialer struct {
	ConnSpy    *MockKafkaConn
	Dialed     []string
	ShouldFail bool
}

func (m *MockKafkaDialer) DialContext(ctx context.Context, network, address string) (sink.KafkaConn, error) {
	m.Dialed = append(m.Dialed, address)
	if m.ShouldFail {
		return nil, errors.New("connection refused")
	}
	if m.ConnSpy == nil {
		m.ConnSpy = &MockKafkaConn{}
	}
	return m.ConnSpy, nil
}

// MockToken is a paho token that is already complete unless Pending is set.
type MockToken struct {
	Err     error
	Pending bool
}

func (t *MockToken) Wait() bool                     { return !t.Pending }
func (t *MockToken) WaitTimeout(time.Duration) bool { return !t.Pending }
func (t *MockToken) Error() error                   { return t.Err }
func (t *MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.Pending {
		close(ch)
	}
	return ch
}

type Publication struct {
	Topic   string
	QoS     byte
	Payload []byte
}

type MockMQTTClient struct {
	Published    []Publication
	Token        *MockToken
	Disconnected bool
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	m.Published = append(m.Published, Publication{Topic: topic, QoS: qos, Payload: payload.([]byte)})
	if m.Token == nil {
		return &MockToken{}
	}
	return m.Token
}

func (m *MockMQTTClient) Disconnect(quiesce uint) { m.Disconnected = true }

// MockTelemetrySender resolves the per-send options the way the SDK does.
type MockTelemetrySender struct {
	Data       []*protocol.Data
	Options    []protocol.SendOptions
	ShouldFail bool
}

func (m *MockTelemetrySender) Send(ctx context.Context, val *protocol.Data, opt ...protocol.SendOption) error {
	if m.ShouldFail {
		return errors.New("broker unavailable")
	}
	var opts protocol.SendOptions
	opts.Apply(opt)
	m.Data = append(m.Data, val)
	m.Options = append(m.Options, opts)
	return nil
}
