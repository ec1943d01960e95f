// FilePath: internal/classify/classify.go
package classify

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/itsatony/misting-hub/internal/models"
)

// Update is a classified inbound transport message. Exactly one concrete
// variant is produced per (topic, payload) pair; classification never fails
// past this boundary, malformed input yields the Malformed variant.
type Update interface {
	isUpdate()
}

// SensorMetric is a single measurement from one of the physical sensors.
type SensorMetric struct {
	SensorID int
	Metric   models.MetricKind
	Value    float64
}

// AverageMetric is a broker-computed averaged measurement.
type AverageMetric struct {
	Metric models.MetricKind
	Value  float64
}

// ActuatorStatus is a raw misting actuator state report.
type ActuatorStatus struct {
	Value string
}

// ModeReport is a raw operating mode report.
type ModeReport struct {
	Value string
}

// HumanDetected is a camera presence notification.
type HumanDetected struct {
	Detected bool
}

// ActivationEvent is a discrete misting activation notification.
type ActivationEvent struct {
	Trigger         models.TriggerType
	Reason          string
	DurationSeconds *int
}

// PersonDetection is a person detection status report.
type PersonDetection struct {
	Status models.PersonDetectionStatus
}

// Malformed carries input that could not be classified, with the reason.
type Malformed struct {
	Topic   string
	Payload []byte
	Reason  string
}

func (SensorMetric) isUpdate()    {}
func (AverageMetric) isUpdate()   {}
func (ActuatorStatus) isUpdate()  {}
func (ModeReport) isUpdate()      {}
func (HumanDetected) isUpdate()   {}
func (ActivationEvent) isUpdate() {}
func (PersonDetection) isUpdate() {}
func (Malformed) isUpdate()       {}

// Topic names understood by the hub. Sensor and average topics carry the
// metric kind as their final segment.
const (
	TopicPrefix         = "misting/"
	TopicStatus         = "misting/status"
	TopicMode           = "misting/mode"
	TopicHumanDetected  = "misting/event/human_detected"
	TopicActivation     = "misting/event/activation"
	TopicPersonDetected = "misting/detection/person"
)

// Classify parses a raw transport message into a typed Update. Firmware in
// the field sends inconsistent payload shapes across versions, so every
// shape maps to a defined variant.
func Classify(topic string, payload []byte) Update {
	switch topic {
	case TopicStatus:
		return ActuatorStatus{Value: string(payload)}
	case TopicMode:
		return ModeReport{Value: string(payload)}
	case TopicHumanDetected:
		return classifyHumanDetected(payload)
	case TopicActivation:
		return classifyActivation(payload)
	case TopicPersonDetected:
		return classifyPersonDetection(payload)
	}

	parts := strings.Split(topic, "/")
	if len(parts) == 4 && parts[0] == "misting" && parts[1] == "sensor" {
		return classifySensorMetric(topic, parts, payload)
	}
	if len(parts) == 3 && parts[0] == "misting" && parts[1] == "average" {
		metric, ok := parseMetricKind(parts[2])
		if !ok {
			return Malformed{Topic: topic, Payload: payload, Reason: "unknown average metric"}
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
		if err != nil {
			return Malformed{Topic: topic, Payload: payload, Reason: "non-numeric payload"}
		}
		return AverageMetric{Metric: metric, Value: value}
	}

	return Malformed{Topic: topic, Payload: payload, Reason: "unrecognized topic"}
}

func classifySensorMetric(topic string, parts []string, payload []byte) Update {
	sensorID, err := strconv.Atoi(parts[2])
	if err != nil || (sensorID != 1 && sensorID != 2) {
		return Malformed{Topic: topic, Payload: payload, Reason: "unknown sensor id"}
	}
	metric, ok := parseMetricKind(parts[3])
	if !ok {
		return Malformed{Topic: topic, Payload: payload, Reason: "unknown sensor metric"}
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return Malformed{Topic: topic, Payload: payload, Reason: "non-numeric payload"}
	}
	return SensorMetric{SensorID: sensorID, Metric: metric, Value: value}
}

func parseMetricKind(s string) (models.MetricKind, bool) {
	switch s {
	case "temperature":
		return models.MetricTemperature, true
	case "humidity":
		return models.MetricHumidity, true
	}
	return "", false
}

// classifyHumanDetected tries structured JSON first and falls back to a
// truthy-string interpretation. This topic never classifies as Malformed;
// the worst case is detected=false.
func classifyHumanDetected(payload []byte) Update {
	var body struct {
		Detected *bool `json:"detected"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Detected != nil {
		return HumanDetected{Detected: *body.Detected}
	}
	raw := strings.TrimSpace(string(payload))
	detected := raw == "1" || strings.EqualFold(raw, "true")
	return HumanDetected{Detected: detected}
}

func classifyActivation(payload []byte) Update {
	event := ActivationEvent{
		Trigger: models.TriggerUnknown,
		Reason:  string(payload),
	}
	var body struct {
		Trigger         string `json:"trigger"`
		Reason          string `json:"reason"`
		DurationSeconds *int   `json:"duration_seconds"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return event
	}
	if body.Trigger != "" {
		event.Trigger = models.TriggerType(body.Trigger)
	}
	if body.Reason != "" {
		event.Reason = body.Reason
	}
	event.DurationSeconds = body.DurationSeconds
	return event
}

func classifyPersonDetection(payload []byte) Update {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Status != "" {
		return PersonDetection{Status: models.PersonDetectionStatus(strings.ToUpper(body.Status))}
	}
	raw := string(payload)
	switch {
	case strings.Contains(raw, string(models.PersonDetected)):
		return PersonDetection{Status: models.PersonDetected}
	case strings.Contains(raw, string(models.NoPerson)):
		return PersonDetection{Status: models.NoPerson}
	}
	return PersonDetection{Status: models.PersonUnknownFormat}
}
