// FilePath: internal/repository/timescale/timescale.events.go
package timescale

import (
	"context"
	"time"

	"github.com/itsatony/misting-hub/internal/database"
	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type EventRepo struct {
	TimeScaleBaseRepo
}

func NewEventRepository(db database.DB) (*EventRepo, error) {
	repo := &EventRepo{TimeScaleBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *EventRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			trigger_type TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER
		)`,
		`SELECT create_hypertable('events', 'timestamp',
			chunk_time_interval => INTERVAL '7 days',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp
			ON events(timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_events_trigger_timestamp
			ON events(trigger_type, timestamp DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize events schema", err)
		}
	}
	return nil
}

func (r *EventRepo) InsertEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = nuts.NID("ev", 12)
	}
	query := `
		INSERT INTO events (id, timestamp, trigger_type, reason, duration_seconds)
		VALUES (:id, :timestamp, :trigger_type, :reason, :duration_seconds)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, event)
	if err != nil {
		return errors.NewDatabaseError("failed to insert event", err)
	}
	return nil
}

func (r *EventRepo) QueryEvents(ctx context.Context, start, end time.Time, page, pageSize int) ([]models.Event, error) {
	if page < 1 {
		page = 1
	}
	events := []models.Event{}
	query := `
		SELECT id, timestamp, trigger_type, reason, duration_seconds
		FROM events
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp DESC
		LIMIT $3 OFFSET $4`

	err := r.db.GetDB().SelectContext(ctx, &events, query, start, end, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query events", err)
	}
	return events, nil
}

func (r *EventRepo) CountEvents(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM events WHERE timestamp BETWEEN $1 AND $2`

	err := r.db.GetDB().GetContext(ctx, &count, query, start, end)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count events", err)
	}
	return count, nil
}

func (r *EventRepo) SummarizeEvents(ctx context.Context, start, end time.Time) (models.EventSummary, error) {
	rows := []struct {
		TriggerType models.TriggerType `db:"trigger_type"`
		Count       int64              `db:"count"`
	}{}
	query := `
		SELECT trigger_type, COUNT(*) as count
		FROM events
		WHERE timestamp BETWEEN $1 AND $2
		GROUP BY trigger_type`

	err := r.db.GetDB().SelectContext(ctx, &rows, query, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to summarize events", err)
	}

	summary := models.EventSummary{}
	for _, row := range rows {
		summary[row.TriggerType] = row.Count
	}
	return summary, nil
}

func (r *EventRepo) DeleteOldEvents(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM events WHERE timestamp < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete old events", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
