// FilePath: internal/classify/classify_test.go
package classify

import (
	"testing"

	"github.com/itsatony/misting-hub/internal/models"
	"github.com/stretchr/testify/require"
)

func TestClassifySensorMetrics(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		want    Update
	}{
		{
			name:    "sensor 1 temperature",
			topic:   "misting/sensor/1/temperature",
			payload: "25.5",
			want:    SensorMetric{SensorID: 1, Metric: models.MetricTemperature, Value: 25.5},
		},
		{
			name:    "sensor 2 humidity",
			topic:   "misting/sensor/2/humidity",
			payload: "60",
			want:    SensorMetric{SensorID: 2, Metric: models.MetricHumidity, Value: 60},
		},
		{
			name:    "whitespace around number",
			topic:   "misting/sensor/1/humidity",
			payload: " 48.25\n",
			want:    SensorMetric{SensorID: 1, Metric: models.MetricHumidity, Value: 48.25},
		},
		{
			name:    "average temperature",
			topic:   "misting/average/temperature",
			payload: "23.75",
			want:    AverageMetric{Metric: models.MetricTemperature, Value: 23.75},
		},
		{
			name:    "average humidity",
			topic:   "misting/average/humidity",
			payload: "55.0",
			want:    AverageMetric{Metric: models.MetricHumidity, Value: 55.0},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Classify(test.topic, []byte(test.payload))
			require.Equal(t, test.want, got)
		})
	}
}

func TestClassifyMalformed(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		reason  string
	}{
		{"non-numeric sensor payload", "misting/sensor/1/temperature", "abc", "non-numeric payload"},
		{"non-numeric average payload", "misting/average/humidity", "{}", "non-numeric payload"},
		{"unknown sensor id", "misting/sensor/3/temperature", "21", "unknown sensor id"},
		{"unknown sensor metric", "misting/sensor/1/pressure", "1013", "unknown sensor metric"},
		{"unknown average metric", "misting/average/pressure", "1013", "unknown average metric"},
		{"unrecognized topic", "misting/unknown", "1", "unrecognized topic"},
		{"foreign topic", "other/sensor/1/temperature", "21", "unrecognized topic"},
		{"empty topic", "", "21", "unrecognized topic"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Classify(test.topic, []byte(test.payload))
			malformed, ok := got.(Malformed)
			require.True(t, ok, "expected Malformed, got %T", got)
			require.Equal(t, test.reason, malformed.Reason)
			require.Equal(t, test.topic, malformed.Topic)
			require.Equal(t, []byte(test.payload), malformed.Payload)
		})
	}
}

func TestClassifyStatusAndMode(t *testing.T) {
	got := Classify(TopicStatus, []byte("ON"))
	require.Equal(t, ActuatorStatus{Value: "ON"}, got)

	// Status is an opaque passthrough, normalization happens downstream
	got = Classify(TopicStatus, []byte("whatever"))
	require.Equal(t, ActuatorStatus{Value: "whatever"}, got)

	got = Classify(TopicMode, []byte("AUTO"))
	require.Equal(t, ModeReport{Value: "AUTO"}, got)
}

func TestClassifyHumanDetected(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{"json detected true", `{"detected":true}`, true},
		{"json detected false", `{"detected":false}`, false},
		{"truthy string 1", "1", true},
		{"truthy string true", "true", true},
		{"truthy string mixed case", "TRUE", true},
		{"falsy string 0", "0", false},
		{"garbage yields false", "##garbage##", false},
		{"json without detected field", `{"other":1}`, false},
		{"empty payload", "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Classify(TopicHumanDetected, []byte(test.payload))
			require.Equal(t, HumanDetected{Detected: test.want}, got)
		})
	}
}

func TestClassifyActivation(t *testing.T) {
	duration := 30
	tests := []struct {
		name    string
		payload string
		want    ActivationEvent
	}{
		{
			name:    "full json",
			payload: `{"trigger":"schedule","reason":"timer","duration_seconds":30}`,
			want:    ActivationEvent{Trigger: "schedule", Reason: "timer", DurationSeconds: &duration},
		},
		{
			name:    "missing fields default",
			payload: `{}`,
			want:    ActivationEvent{Trigger: models.TriggerUnknown, Reason: "{}"},
		},
		{
			name:    "non-json falls back to raw reason",
			payload: "pump started",
			want:    ActivationEvent{Trigger: models.TriggerUnknown, Reason: "pump started"},
		},
		{
			name:    "trigger only",
			payload: `{"trigger":"humidity_low"}`,
			want:    ActivationEvent{Trigger: "humidity_low", Reason: `{"trigger":"humidity_low"}`},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Classify(TopicActivation, []byte(test.payload))
			require.Equal(t, test.want, got)
		})
	}
}

func TestClassifyPersonDetection(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    models.PersonDetectionStatus
	}{
		{"json status uppercased", `{"status":"person_detected"}`, models.PersonDetected},
		{"json status passthrough", `{"status":"NO_PERSON"}`, models.NoPerson},
		{"heuristic person detected", "PERSON_DETECTED at gate", models.PersonDetected},
		{"heuristic no person", "result: NO_PERSON", models.NoPerson},
		{"unparseable payload", "???", models.PersonUnknownFormat},
		{"empty json", `{}`, models.PersonUnknownFormat},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Classify(TopicPersonDetected, []byte(test.payload))
			require.Equal(t, PersonDetection{Status: test.want}, got)
		})
	}
}
