// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/itsatony/misting-hub/internal/database"
	"github.com/itsatony/misting-hub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ReadingRepository defines the append-only persistence gateway for
// time-series readings plus the query surface over them. Inserts are
// atomic single-record appends; readings are never mutated by the hub.
type ReadingRepository interface {
	database.Repository
	InsertReading(ctx context.Context, reading *models.Reading) error
	QueryReadings(ctx context.Context, key models.StreamKey, limit int) ([]models.Reading, error)
	DeleteOldReadings(ctx context.Context, before time.Time) (int64, error)
}

// EventRepository defines the append-only persistence gateway for discrete
// system events plus their history and summary queries.
type EventRepository interface {
	database.Repository
	InsertEvent(ctx context.Context, event *models.Event) error
	QueryEvents(ctx context.Context, start, end time.Time, page, pageSize int) ([]models.Event, error)
	CountEvents(ctx context.Context, start, end time.Time) (int64, error)
	SummarizeEvents(ctx context.Context, start, end time.Time) (models.EventSummary, error)
	DeleteOldEvents(ctx context.Context, before time.Time) (int64, error)
}

// SnapshotCache mirrors the latest snapshot for co-located consumers.
// Implementations are best-effort; the in-memory snapshot stays the single
// source of truth.
type SnapshotCache interface {
	Store(ctx context.Context, snap models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
}
