// FilePath: internal/hubservice/hubservice.query.go
package hubservice

import (
	"context"
	"time"

	"github.com/itsatony/misting-hub/internal/models"
)

// EventPage is one page of event history, newest first.
type EventPage struct {
	Events   []models.Event `json:"events"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// GetSnapshot returns a point-in-time copy of the current state. Ingestion
// gaps show up as stale fields here, which is a normal observable state,
// not an error.
func (s *HubService) GetSnapshot() models.Snapshot {
	return s.Aggregator.Current(time.Now())
}

// QueryReadings returns up to limit readings for one stream, newest first.
func (s *HubService) QueryReadings(ctx context.Context, key models.StreamKey, limit int) ([]models.Reading, error) {
	return s.Readings.QueryReadings(ctx, key, limit)
}

// QueryEvents returns one page of events within the filter's time range,
// newest first, together with the total match count.
func (s *HubService) QueryEvents(ctx context.Context, filters models.EventFilters) (*EventPage, error) {
	filters.Normalize(time.Now())

	events, err := s.Events.QueryEvents(ctx, *filters.Start, *filters.End, filters.Page, filters.PageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.Events.CountEvents(ctx, *filters.Start, *filters.End)
	if err != nil {
		return nil, err
	}
	return &EventPage{
		Events:   events,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}

// SummarizeEvents returns per-trigger event counts within a time range.
func (s *HubService) SummarizeEvents(ctx context.Context, start, end time.Time) (models.EventSummary, error) {
	return s.Events.SummarizeEvents(ctx, start, end)
}
