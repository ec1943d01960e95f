// FilePath: internal/models/models.snapshot.go
package models

import "time"

// StreamKey identifies a logical telemetry stream.
type StreamKey string

const (
	StreamSensor1 StreamKey = "sensor1"
	StreamSensor2 StreamKey = "sensor2"
	StreamAverage StreamKey = "average"
)

// ValidStreamKey reports whether key names a known stream.
func ValidStreamKey(key StreamKey) bool {
	switch key {
	case StreamSensor1, StreamSensor2, StreamAverage:
		return true
	}
	return false
}

// MetricKind is one of the two measurements a stream carries.
type MetricKind string

const (
	MetricTemperature MetricKind = "temperature"
	MetricHumidity    MetricKind = "humidity"
)

// MistingStatus is the reported actuator state.
type MistingStatus string

const (
	MistingOn      MistingStatus = "ON"
	MistingOff     MistingStatus = "OFF"
	MistingUnknown MistingStatus = "UNKNOWN"
)

// OperatingMode is the reported controller mode.
type OperatingMode string

const (
	ModeManual     OperatingMode = "MANUAL"
	ModeAuto       OperatingMode = "AUTO"
	ModeContinuous OperatingMode = "CONTINUOUS"
)

// PersonDetectionStatus is the last reported camera detection result.
type PersonDetectionStatus string

const (
	PersonDetected      PersonDetectionStatus = "PERSON_DETECTED"
	NoPerson            PersonDetectionStatus = "NO_PERSON"
	PersonUnknown       PersonDetectionStatus = "UNKNOWN"
	PersonUnknownFormat PersonDetectionStatus = "UNKNOWN_FORMAT"
)

// StreamState holds the last observed values for one telemetry stream.
// Fields are nil until first observed. Pointees are never mutated in place;
// updates always swap in fresh pointers, so a shallow Snapshot copy is safe
// to hand out to readers.
type StreamState struct {
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// Complete reports whether both measurements are present.
func (s StreamState) Complete() bool {
	return s.Temperature != nil && s.Humidity != nil
}

// Snapshot is the single current-state record for the whole installation.
type Snapshot struct {
	Sensor1 StreamState `json:"sensor1"`
	Sensor2 StreamState `json:"sensor2"`
	Average StreamState `json:"average"`

	MistingStatus    MistingStatus         `json:"misting_status"`
	Mode             OperatingMode         `json:"mode"`
	HumanDetected    bool                  `json:"human_detected"`
	PersonDetection  PersonDetectionStatus `json:"person_detection_status"`
	PersonDetectedAt *time.Time            `json:"person_detected_at,omitempty"`
	LastEventTrigger string                `json:"last_event_trigger,omitempty"`
}

// NewSnapshot returns a snapshot with the defined zero states.
func NewSnapshot() Snapshot {
	return Snapshot{
		MistingStatus:   MistingUnknown,
		PersonDetection: PersonUnknown,
	}
}

// Stream returns a pointer to the state for the given stream key, or nil
// for an unknown key.
func (s *Snapshot) Stream(key StreamKey) *StreamState {
	switch key {
	case StreamSensor1:
		return &s.Sensor1
	case StreamSensor2:
		return &s.Sensor2
	case StreamAverage:
		return &s.Average
	}
	return nil
}
