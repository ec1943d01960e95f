// FilePath: internal/models/models.event.go
package models

import "time"

// TriggerType labels what caused a discrete system event. Sensor-originated
// activation messages may carry free-form triggers beyond the known constants.
type TriggerType string

const (
	TriggerImageDetection TriggerType = "image_detection"
	TriggerManualWebsite  TriggerType = "manual_website"
	TriggerUnknown        TriggerType = "unknown"
)

// Event is a persisted discrete occurrence (activation, detection).
type Event struct {
	ID              string      `json:"id" db:"id"`
	Timestamp       time.Time   `json:"timestamp" db:"timestamp"`
	TriggerType     TriggerType `json:"trigger_type" db:"trigger_type"`
	Reason          string      `json:"reason" db:"reason"`
	DurationSeconds *int        `json:"duration_seconds,omitempty" db:"duration_seconds"`
}

// EventSummary maps trigger types to occurrence counts within a time range.
type EventSummary map[TriggerType]int64
