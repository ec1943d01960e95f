// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"github.com/itsatony/misting-hub/internal/cleanup"
	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/pipeline"
	"github.com/itsatony/misting-hub/internal/repository"
	"github.com/itsatony/misting-hub/internal/state"
)

// Publisher is the outbound capability used to republish control and mode
// commands to the transport.
type Publisher interface {
	Publish(topic, payload string) error
}

// HubService contains the query surface, control operations and
// service-wide dependencies
type HubService struct {
	Readings   repository.ReadingRepository
	Events     repository.EventRepository
	Aggregator *state.Aggregator
	Pipeline   *pipeline.Pipeline
	Publisher  Publisher
	Cleanup    *cleanup.RetentionService
}

// New creates a new HubService instance
func New(
	readings repository.ReadingRepository,
	events repository.EventRepository,
	aggregator *state.Aggregator,
	pipe *pipeline.Pipeline,
	publisher Publisher,
) *HubService {
	svc := &HubService{
		Readings:   readings,
		Events:     events,
		Aggregator: aggregator,
		Pipeline:   pipe,
		Publisher:  publisher,
	}
	svc.Cleanup = cleanup.New(readings, events)
	return svc
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Readings == nil {
		return ErrMissingDependency("readings")
	}
	if s.Events == nil {
		return ErrMissingDependency("events")
	}
	if s.Aggregator == nil {
		return ErrMissingDependency("aggregator")
	}
	if s.Pipeline == nil {
		return ErrMissingDependency("pipeline")
	}
	if s.Publisher == nil {
		return ErrMissingDependency("publisher")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
