// FilePath: internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itsatony/misting-hub/internal/database"
	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/models"
	"github.com/itsatony/misting-hub/internal/ratelimit"
	"github.com/itsatony/misting-hub/internal/state"
	"github.com/stretchr/testify/require"
)

// fakeReadingRepo is an in-memory ReadingRepository.
type fakeReadingRepo struct {
	mu       sync.Mutex
	readings []models.Reading
	failNext bool
}

func (f *fakeReadingRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeReadingRepo) InsertReading(ctx context.Context, reading *models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.NewDatabaseError("boom", nil)
	}
	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeReadingRepo) QueryReadings(ctx context.Context, key models.StreamKey, limit int) ([]models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reading
	for i := len(f.readings) - 1; i >= 0 && len(out) < limit; i-- {
		if f.readings[i].StreamKey == key {
			out = append(out, f.readings[i])
		}
	}
	return out, nil
}

func (f *fakeReadingRepo) DeleteOldReadings(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeReadingRepo) all() []models.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Reading(nil), f.readings...)
}

// fakeEventRepo is an in-memory EventRepository.
type fakeEventRepo struct {
	mu     sync.Mutex
	events []models.Event
}

func (f *fakeEventRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeEventRepo) InsertEvent(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) QueryEvents(ctx context.Context, start, end time.Time, page, pageSize int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Event(nil), f.events...), nil
}

func (f *fakeEventRepo) CountEvents(ctx context.Context, start, end time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.events)), nil
}

func (f *fakeEventRepo) SummarizeEvents(ctx context.Context, start, end time.Time) (models.EventSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := models.EventSummary{}
	for _, event := range f.events {
		summary[event.TriggerType]++
	}
	return summary, nil
}

func (f *fakeEventRepo) DeleteOldEvents(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeEventRepo) all() []models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Event(nil), f.events...)
}

// testPipeline wires a pipeline over fakes with a controllable clock.
func testPipeline(cooldown time.Duration) (*Pipeline, *fakeReadingRepo, *fakeEventRepo, *state.Aggregator, *time.Time) {
	readings := &fakeReadingRepo{}
	events := &fakeEventRepo{}
	aggregator := state.New(time.Hour)
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	pipe := New(Deps{
		Aggregator: aggregator,
		Limiter:    ratelimit.New(cooldown),
		Readings:   readings,
		Events:     events,
		Now:        func() time.Time { return clock },
	})
	return pipe, readings, events, aggregator, &clock
}

func TestCompletePairPersistsOneReading(t *testing.T) {
	pipe, readings, _, _, _ := testPipeline(60 * time.Second)

	pipe.OnMessage("misting/sensor/1/temperature", []byte("25.5"))
	pipe.OnMessage("misting/sensor/1/humidity", []byte("60.0"))

	persisted := readings.all()
	require.Len(t, persisted, 1)
	require.Equal(t, models.StreamSensor1, persisted[0].StreamKey)
	require.Equal(t, 25.5, persisted[0].Temperature)
	require.Equal(t, 60.0, persisted[0].Humidity)
}

func TestCooldownSuppressesSecondReading(t *testing.T) {
	pipe, readings, _, aggregator, clock := testPipeline(60 * time.Second)

	pipe.OnMessage("misting/sensor/1/temperature", []byte("25.5"))
	pipe.OnMessage("misting/sensor/1/humidity", []byte("60.0"))

	// Same pair again 10 seconds later: no new reading, snapshot updated
	*clock = clock.Add(10 * time.Second)
	pipe.OnMessage("misting/sensor/1/temperature", []byte("26.5"))
	pipe.OnMessage("misting/sensor/1/humidity", []byte("61.0"))

	require.Len(t, readings.all(), 1)
	snap := aggregator.Current(*clock)
	require.Equal(t, 26.5, *snap.Sensor1.Temperature)
	require.Equal(t, 61.0, *snap.Sensor1.Humidity)

	// Past the cooldown the next pair persists again
	*clock = clock.Add(60 * time.Second)
	pipe.OnMessage("misting/sensor/1/humidity", []byte("62.0"))
	require.Len(t, readings.all(), 2)
}

func TestCooldownIsPerStream(t *testing.T) {
	pipe, readings, _, _, _ := testPipeline(60 * time.Second)

	pipe.OnMessage("misting/sensor/1/temperature", []byte("25.5"))
	pipe.OnMessage("misting/sensor/1/humidity", []byte("60.0"))
	pipe.OnMessage("misting/sensor/2/temperature", []byte("24.5"))
	pipe.OnMessage("misting/sensor/2/humidity", []byte("58.0"))

	persisted := readings.all()
	require.Len(t, persisted, 2)
	require.Equal(t, models.StreamSensor1, persisted[0].StreamKey)
	require.Equal(t, models.StreamSensor2, persisted[1].StreamKey)
}

func TestAverageStreamResetsAfterPersist(t *testing.T) {
	pipe, readings, _, aggregator, clock := testPipeline(60 * time.Second)

	pipe.OnMessage("misting/average/temperature", []byte("24.0"))
	pipe.OnMessage("misting/average/humidity", []byte("52.0"))
	require.Len(t, readings.all(), 1)

	// Both average fields are reset after the persisted reading
	snap := aggregator.Current(*clock)
	require.Nil(t, snap.Average.Temperature)
	require.Nil(t, snap.Average.Humidity)

	// A lone temperature after the reset must not re-trigger a reading
	*clock = clock.Add(2 * time.Minute)
	pipe.OnMessage("misting/average/temperature", []byte("24.5"))
	require.Len(t, readings.all(), 1)

	pipe.OnMessage("misting/average/humidity", []byte("53.0"))
	require.Len(t, readings.all(), 2)
}

func TestMalformedPayloadIsDroppedSilently(t *testing.T) {
	pipe, readings, events, aggregator, clock := testPipeline(60 * time.Second)

	require.NotPanics(t, func() {
		pipe.OnMessage("misting/sensor/1/temperature", []byte("abc"))
		pipe.OnMessage("misting/nonsense", []byte("{}"))
	})

	require.Empty(t, readings.all())
	require.Empty(t, events.all())
	snap := aggregator.Current(*clock)
	require.Nil(t, snap.Sensor1.Temperature)
}

func TestActivationEventBypassesRateLimit(t *testing.T) {
	pipe, _, events, _, _ := testPipeline(60 * time.Second)

	payload := []byte(`{"trigger":"schedule","reason":"timer","duration_seconds":30}`)
	pipe.OnMessage("misting/event/activation", payload)
	pipe.OnMessage("misting/event/activation", payload)

	persisted := events.all()
	require.Len(t, persisted, 2)
	for _, event := range persisted {
		require.Equal(t, models.TriggerType("schedule"), event.TriggerType)
		require.Equal(t, "timer", event.Reason)
		require.NotNil(t, event.DurationSeconds)
		require.Equal(t, 30, *event.DurationSeconds)
	}
}

func TestHumanDetectedPersistsSingleEvent(t *testing.T) {
	pipe, _, events, aggregator, clock := testPipeline(60 * time.Second)

	pipe.OnMessage("misting/event/human_detected", []byte(`{"detected":true}`))

	persisted := events.all()
	require.Len(t, persisted, 1)
	require.Equal(t, models.TriggerImageDetection, persisted[0].TriggerType)
	require.True(t, aggregator.Current(*clock).HumanDetected)

	// detected=false leaves state and history untouched
	pipe.OnMessage("misting/event/human_detected", []byte(`{"detected":false}`))
	require.Len(t, events.all(), 1)
	require.True(t, aggregator.Current(*clock).HumanDetected)
}

func TestStorageFailureDoesNotRollBackSnapshot(t *testing.T) {
	pipe, readings, _, aggregator, clock := testPipeline(60 * time.Second)
	readings.failNext = true

	pipe.OnMessage("misting/sensor/1/temperature", []byte("25.5"))
	require.NotPanics(t, func() {
		pipe.OnMessage("misting/sensor/1/humidity", []byte("60.0"))
	})

	// Write failed but the snapshot mutation stands
	require.Empty(t, readings.all())
	snap := aggregator.Current(*clock)
	require.Equal(t, 60.0, *snap.Sensor1.Humidity)

	// The failed write's admission still counts against the cooldown
	*clock = clock.Add(10 * time.Second)
	pipe.OnMessage("misting/sensor/1/humidity", []byte("61.0"))
	require.Empty(t, readings.all())
}

func TestPipelineEmitsPersistenceEvents(t *testing.T) {
	pipe, _, _, _, _ := testPipeline(60 * time.Second)

	persisted := make(chan string, 1)
	pipe.On(EventReadingPersisted, func(args ...interface{}) {
		if len(args) > 0 {
			if key, ok := args[0].(string); ok {
				persisted <- key
			}
		}
	})

	pipe.OnMessage("misting/sensor/2/temperature", []byte("22.0"))
	pipe.OnMessage("misting/sensor/2/humidity", []byte("44.0"))

	select {
	case key := <-persisted:
		require.Equal(t, "sensor2", key)
	case <-time.After(time.Second):
		t.Fatal("no reading.persisted notification received")
	}
}
