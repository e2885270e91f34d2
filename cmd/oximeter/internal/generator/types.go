package generator

import (
	"context"
	"math/rand"
	"time"

	"github.com/shubham-shewale/oximeter-sim/pkg/models"
)

// for deterministic testing
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// for deterministic values
type Rand interface {
	Intn(n int) int
}

// Sink delivers a message to a named output. Implementations block until the
// message is handed off or ctx is done.
type Sink interface {
	Send(ctx context.Context, output string, msg models.Message) error
}

// Recorder observes every send attempt.
type Recorder interface {
	ObserveSend(value float64, took time.Duration, err error)
}

type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type RealRand struct{ *rand.Rand }

func NewRealRand() RealRand {
	return RealRand{rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r RealRand) Intn(n int) int { return r.Rand.Intn(n) }

type nopRecorder struct{}

func (nopRecorder) ObserveSend(float64, time.Duration, error) {}
