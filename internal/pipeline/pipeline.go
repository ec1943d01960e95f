// FilePath: internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"time"

	"github.com/itsatony/misting-hub/internal/classify"
	"github.com/itsatony/misting-hub/internal/models"
	"github.com/itsatony/misting-hub/internal/ratelimit"
	"github.com/itsatony/misting-hub/internal/repository"
	"github.com/itsatony/misting-hub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// In-process events emitted by the pipeline.
const (
	EventSnapshotUpdated  = "snapshot.updated"
	EventReadingPersisted = "reading.persisted"
	EventPersisted        = "event.persisted"
)

// Deps carries the collaborators a Pipeline needs. Cache may be nil. Now
// defaults to time.Now.
type Deps struct {
	Aggregator   *state.Aggregator
	Limiter      *ratelimit.Limiter
	Readings     repository.ReadingRepository
	Events       repository.EventRepository
	Cache        repository.SnapshotCache
	Now          func() time.Time
	WriteTimeout time.Duration
}

// Pipeline is the per-message transformer that drives classification,
// snapshot aggregation and rate-limited persistence. The transport client
// invokes OnMessage from its delivery goroutine; API handlers read the
// aggregator concurrently.
type Pipeline struct {
	aggregator   *state.Aggregator
	limiter      *ratelimit.Limiter
	readings     repository.ReadingRepository
	events       repository.EventRepository
	cache        repository.SnapshotCache
	emitter      *nuts.EventEmitter
	now          func() time.Time
	writeTimeout time.Duration
}

// New creates a Pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	writeTimeout := deps.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Pipeline{
		aggregator:   deps.Aggregator,
		limiter:      deps.Limiter,
		readings:     deps.Readings,
		events:       deps.Events,
		cache:        deps.Cache,
		emitter:      nuts.NewEventEmitter(),
		now:          now,
		writeTimeout: writeTimeout,
	}
}

// On registers a handler for one of the pipeline's in-process events.
func (p *Pipeline) On(event string, handler func(args ...interface{})) {
	p.emitter.On(event, "pipeline_handler", handler)
}

// OnMessage processes one delivered transport message to completion.
// Classification failures are logged and dropped; persistence failures are
// logged and never roll back the snapshot mutation. It must never block the
// transport client beyond its own execution time and never panics past its
// boundary.
func (p *Pipeline) OnMessage(topic string, payload []byte) {
	now := p.now()

	update := classify.Classify(topic, payload)
	if malformed, ok := update.(classify.Malformed); ok {
		nuts.L.Warnf("[Pipeline] Dropping malformed message on %s: %s", malformed.Topic, malformed.Reason)
		return
	}

	result := p.aggregator.Apply(update, now)

	for _, reading := range result.Readings {
		p.persistReading(reading, now)
	}
	for _, event := range result.Events {
		p.persistEvent(event)
	}

	p.mirrorSnapshot(now)
	p.emitter.Emit(EventSnapshotUpdated, topic)
}

// persistReading runs the rate limiter and, if admitted, appends the
// reading. The snapshot lock is not held here; the admission recorded by a
// write that later fails still counts against the cooldown.
func (p *Pipeline) persistReading(reading models.Reading, now time.Time) {
	if !p.limiter.Admit(reading.StreamKey, now) {
		return
	}
	if reading.StreamKey == models.StreamAverage {
		p.aggregator.ClearAverage()
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.readings.InsertReading(ctx, &reading); err != nil {
		nuts.L.Errorf("[Pipeline] Failed to persist %s reading: %v", reading.StreamKey, err)
		return
	}
	p.emitter.Emit(EventReadingPersisted, string(reading.StreamKey))
}

// persistEvent appends a discrete event. Events are never rate limited.
func (p *Pipeline) persistEvent(event models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.events.InsertEvent(ctx, &event); err != nil {
		nuts.L.Errorf("[Pipeline] Failed to persist %s event: %v", event.TriggerType, err)
		return
	}
	p.emitter.Emit(EventPersisted, string(event.TriggerType))
}

// mirrorSnapshot pushes the fresh snapshot copy to the optional cache.
// Best effort only.
func (p *Pipeline) mirrorSnapshot(now time.Time) {
	if p.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.cache.Store(ctx, p.aggregator.Current(now)); err != nil {
		nuts.L.Warnf("[Pipeline] Failed to mirror snapshot: %v", err)
	}
}
