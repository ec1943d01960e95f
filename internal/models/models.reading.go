// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading is a persisted, complete temperature+humidity sample for one stream.
type Reading struct {
	ID          string    `json:"id" db:"id"`
	StreamKey   StreamKey `json:"stream_key" db:"stream_key"`
	Temperature float64   `json:"temperature" db:"temperature"`
	Humidity    float64   `json:"humidity" db:"humidity"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}
