package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics records publisher activity on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Successful sends. Watch for: a flat line means the module stopped publishing.
	ReadingsSent prometheus.Counter

	// Failed sends. Any increase is followed by the module exiting.
	SendErrors prometheus.Counter

	// Last generated value, whether or not it was delivered.
	SpO2 prometheus.Gauge

	// Time spent inside the external client's send call.
	SendDuration prometheus.Histogram

	mu       sync.RWMutex
	lastSent time.Time
	lastErr  error
	value    float64
	started  time.Time
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ReadingsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oximeter_readings_sent_total",
			Help: "Readings handed off to the output sink.",
		}),
		SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oximeter_send_errors_total",
			Help: "Readings the output sink rejected.",
		}),
		SpO2: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oximeter_spo2_percent",
			Help: "Most recently generated SpO2 value.",
		}),
		SendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oximeter_send_duration_seconds",
			Help:    "Latency of a single send call.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		started: time.Now(),
	}

	m.registry.MustRegister(
		m.ReadingsSent,
		m.SendErrors,
		m.SpO2,
		m.SendDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveSend(value float64, took time.Duration, err error) {
	m.SpO2.Set(value)
	m.SendDuration.Observe(took.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.lastErr = err
	if err != nil {
		m.SendErrors.Inc()
		return
	}
	m.ReadingsSent.Inc()
	m.lastSent = time.Now()
}

// Status is the body served on /healthz.
type Status struct {
	Status    string     `json:"status"`
	SpO2      *float64   `json:"spo2,omitempty"`
	LastSent  *time.Time `json:"last_sent,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Uptime    string     `json:"uptime"`
}

func (m *Metrics) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{Status: "ok", Uptime: time.Since(m.started).Round(time.Second).String()}
	if !m.lastSent.IsZero() {
		v, at := m.value, m.lastSent.UTC()
		s.SpO2 = &v
		s.LastSent = &at
	}
	if m.lastErr != nil {
		s.Status = "failing"
		s.LastError = m.lastErr.Error()
	}
	return s
}
