// FilePath: internal/cleanup/cleanup.go
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/itsatony/misting-hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// RetentionService prunes readings and events past their retention window
type RetentionService struct {
	readings repository.ReadingRepository
	events   repository.EventRepository
	stop     chan struct{}
	emitter  *nuts.EventEmitter
}

// New creates a new RetentionService
func New(readings repository.ReadingRepository, events repository.EventRepository) *RetentionService {
	return &RetentionService{
		readings: readings,
		events:   events,
		stop:     make(chan struct{}),
		emitter:  nuts.NewEventEmitter(),
	}
}

// Run prunes on the given interval until Stop is called. Meant to run as a
// background goroutine; the Timescale retention policy is the backstop,
// this keeps the tables lean between policy runs.
func (s *RetentionService) Run(interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.PruneOnce(context.Background(), retention); err != nil {
				nuts.L.Errorf("[Cleanup] Prune failed: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

// PruneOnce deletes readings and events older than the retention window.
func (s *RetentionService) PruneOnce(ctx context.Context, retention time.Duration) error {
	before := time.Now().Add(-retention)

	readings, err := s.readings.DeleteOldReadings(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to prune readings: %w", err)
	}
	if readings > 0 {
		nuts.L.Infof("[Cleanup] Pruned %d readings older than %v", readings, before)
		s.emitter.Emit("readings.pruned", readings)
	}

	events, err := s.events.DeleteOldEvents(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to prune events: %w", err)
	}
	if events > 0 {
		nuts.L.Infof("[Cleanup] Pruned %d events older than %v", events, before)
		s.emitter.Emit("events.pruned", events)
	}
	return nil
}

// Stop ends the Run loop.
func (s *RetentionService) Stop() {
	close(s.stop)
}

// OnCleanup registers a callback for prune events
func (s *RetentionService) OnCleanup(event string, handler func(count int64)) {
	s.emitter.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if count, ok := args[0].(int64); ok {
				handler(count)
			}
		}
	})
}
