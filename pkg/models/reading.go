package models

import "time"

const (
	ContentTypeJSON = "application/json"
	EncodingUTF8    = "utf-8"
)

// Reading is a single simulated SpO2 sample
type Reading struct {
	SpO2      float64   `json:"spo2"`      // percent, one decimal place
	Timestamp time.Time `json:"timestamp"` // always UTC
}

func NewReading(spo2 float64, at time.Time) Reading {
	return Reading{SpO2: spo2, Timestamp: at.UTC()}
}

// Message is the envelope handed to an output sink
type Message struct {
	Payload         []byte
	ContentType     string
	ContentEncoding string
}
