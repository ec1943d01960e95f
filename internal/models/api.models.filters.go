// FilePath: internal/models/api.models.filters.go
package models

import "time"

// EventFilters defines the query options for the event history endpoints.
// Decoded from URL query parameters with gorilla/schema.
type EventFilters struct {
	Start    *time.Time `schema:"start"`
	End      *time.Time `schema:"end"`
	Page     int        `schema:"page"`
	PageSize int        `schema:"page_size"`
}

// Normalize fills defaults and clamps pagination to sane bounds.
func (f *EventFilters) Normalize(now time.Time) {
	if f.End == nil {
		end := now
		f.End = &end
	}
	if f.Start == nil {
		start := f.End.Add(-24 * time.Hour)
		f.Start = &start
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 200 {
		f.PageSize = 50
	}
}

// ReadingFilters defines the query options for reading history.
type ReadingFilters struct {
	Limit int `schema:"limit"`
}

// Normalize clamps the limit to the supported range.
func (f *ReadingFilters) Normalize() {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
}
