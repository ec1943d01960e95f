// FilePath: internal/state/aggregator.go
package state

import (
	"strings"
	"sync"
	"time"

	"github.com/itsatony/misting-hub/internal/classify"
	"github.com/itsatony/misting-hub/internal/models"
)

// DefaultAverageFreshness is how long a broker-published average stays
// authoritative before snapshot reads fall back to computing the average
// from the two physical sensors.
const DefaultAverageFreshness = 5 * time.Minute

// ApplyResult carries the persistence candidates produced by one update.
// Readings are still subject to rate limiting; events are always persisted.
type ApplyResult struct {
	Readings []models.Reading
	Events   []models.Event
}

// Aggregator owns the current-state snapshot. All mutation goes through
// Apply and ClearAverage; readers get point-in-time copies via Current.
type Aggregator struct {
	mu               sync.RWMutex
	snap             models.Snapshot
	averageFreshness time.Duration
}

// New creates an Aggregator with an empty snapshot.
func New(averageFreshness time.Duration) *Aggregator {
	if averageFreshness <= 0 {
		averageFreshness = DefaultAverageFreshness
	}
	return &Aggregator{
		snap:             models.NewSnapshot(),
		averageFreshness: averageFreshness,
	}
}

// Apply merges one classified update into the snapshot and returns the
// resulting persistence candidates. A partial stream (temperature without
// humidity) mutates the snapshot but produces no reading; that is normal
// steady state, not a failure.
func (a *Aggregator) Apply(update classify.Update, now time.Time) ApplyResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	var result ApplyResult
	switch u := update.(type) {
	case classify.SensorMetric:
		key := sensorStreamKey(u.SensorID)
		if reading := a.applyMetric(key, u.Metric, u.Value, now); reading != nil {
			result.Readings = append(result.Readings, *reading)
		}
	case classify.AverageMetric:
		if reading := a.applyMetric(models.StreamAverage, u.Metric, u.Value, now); reading != nil {
			result.Readings = append(result.Readings, *reading)
		}
	case classify.ActuatorStatus:
		a.snap.MistingStatus = normalizeMistingStatus(u.Value)
	case classify.ModeReport:
		a.snap.Mode = models.OperatingMode(normalize(u.Value))
	case classify.HumanDetected:
		if u.Detected {
			a.snap.HumanDetected = true
			a.snap.LastEventTrigger = "human_detected"
			result.Events = append(result.Events, models.Event{
				Timestamp:   now,
				TriggerType: models.TriggerImageDetection,
				Reason:      "person_sensed",
			})
		}
	case classify.ActivationEvent:
		a.snap.LastEventTrigger = string(u.Trigger)
		result.Events = append(result.Events, models.Event{
			Timestamp:       now,
			TriggerType:     u.Trigger,
			Reason:          u.Reason,
			DurationSeconds: u.DurationSeconds,
		})
	case classify.PersonDetection:
		ts := now
		a.snap.PersonDetection = u.Status
		a.snap.PersonDetectedAt = &ts
	case classify.Malformed:
		// No snapshot mutation; the pipeline logs and drops it.
	}
	return result
}

// applyMetric writes one measurement and returns a reading candidate when
// the stream is complete afterwards. Must hold a.mu.
func (a *Aggregator) applyMetric(key models.StreamKey, metric models.MetricKind, value float64, now time.Time) *models.Reading {
	stream := a.snap.Stream(key)
	if stream == nil {
		return nil
	}
	v := value
	ts := now
	switch metric {
	case models.MetricTemperature:
		stream.Temperature = &v
	case models.MetricHumidity:
		stream.Humidity = &v
	default:
		return nil
	}
	stream.UpdatedAt = &ts

	if !stream.Complete() {
		return nil
	}
	return &models.Reading{
		StreamKey:   key,
		Temperature: *stream.Temperature,
		Humidity:    *stream.Humidity,
		Timestamp:   *stream.UpdatedAt,
	}
}

// ClearAverage resets both average fields after an average reading was
// admitted for persistence, forcing the next average reading to be a fresh
// complete pair. Per-sensor streams keep continuous overwrite semantics and
// are never reset.
func (a *Aggregator) ClearAverage() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.Average = models.StreamState{}
}

// Current returns a point-in-time copy of the snapshot. Broker-published
// average values are authoritative while fresh; when they are missing or
// stale and both physical sensors carry complete values, the copy's average
// is computed from the sensors on read. The stored snapshot is not touched.
func (a *Aggregator) Current(now time.Time) models.Snapshot {
	a.mu.RLock()
	snap := a.snap
	a.mu.RUnlock()

	if a.averageIsFresh(snap, now) {
		return snap
	}
	if snap.Sensor1.Complete() && snap.Sensor2.Complete() {
		temp := (*snap.Sensor1.Temperature + *snap.Sensor2.Temperature) / 2
		hum := (*snap.Sensor1.Humidity + *snap.Sensor2.Humidity) / 2
		ts := laterTime(*snap.Sensor1.UpdatedAt, *snap.Sensor2.UpdatedAt)
		snap.Average = models.StreamState{Temperature: &temp, Humidity: &hum, UpdatedAt: &ts}
	}
	return snap
}

func (a *Aggregator) averageIsFresh(snap models.Snapshot, now time.Time) bool {
	return snap.Average.Complete() &&
		snap.Average.UpdatedAt != nil &&
		now.Sub(*snap.Average.UpdatedAt) <= a.averageFreshness
}

func sensorStreamKey(sensorID int) models.StreamKey {
	if sensorID == 2 {
		return models.StreamSensor2
	}
	return models.StreamSensor1
}

func normalizeMistingStatus(raw string) models.MistingStatus {
	switch normalize(raw) {
	case "ON", "1", "TRUE":
		return models.MistingOn
	case "OFF", "0", "FALSE":
		return models.MistingOff
	}
	return models.MistingUnknown
}

func normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func laterTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
