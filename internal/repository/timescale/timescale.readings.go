// FilePath: internal/repository/timescale/timescale.readings.go
package timescale

import (
	"context"
	"fmt"
	"time"

	"github.com/itsatony/misting-hub/internal/database"
	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type ReadingRepo struct {
	TimeScaleBaseRepo
}

func NewReadingRepository(db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{TimeScaleBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT NOT NULL,
			stream_key TEXT NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			humidity DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`SELECT create_hypertable('readings', 'timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_stream_timestamp
			ON readings(stream_key, timestamp DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize readings schema", err)
		}
	}

	r.setupRetentionPolicy()
	return nil
}

func (r *ReadingRepo) setupRetentionPolicy() {
	query := `
		SELECT add_retention_policy('readings',
			INTERVAL '13 months',
			if_not_exists => TRUE
		)`
	if _, err := r.db.GetDB().Exec(query); err != nil {
		nuts.L.Errorf("[TimescaleDB] Failed to set up readings retention policy: %v", err)
	}
}

func (r *ReadingRepo) InsertReading(ctx context.Context, reading *models.Reading) error {
	if reading.ID == "" {
		reading.ID = nuts.NID("rd", 12)
	}
	query := `
		INSERT INTO readings (id, stream_key, temperature, humidity, timestamp)
		VALUES (:id, :stream_key, :temperature, :humidity, :timestamp)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

func (r *ReadingRepo) QueryReadings(ctx context.Context, key models.StreamKey, limit int) ([]models.Reading, error) {
	if !models.ValidStreamKey(key) {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown stream key: %s", key), nil)
	}
	readings := []models.Reading{}
	query := `
		SELECT id, stream_key, temperature, humidity, timestamp
		FROM readings
		WHERE stream_key = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, key, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) DeleteOldReadings(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM readings WHERE timestamp < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete old readings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
