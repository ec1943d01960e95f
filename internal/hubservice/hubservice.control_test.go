// FilePath: internal/hubservice/hubservice.control_test.go
package hubservice

import (
	"context"
	"testing"
	"time"

	"github.com/itsatony/misting-hub/internal/database"
	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/models"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	topic   string
	payload string
}

func (f *fakePublisher) Publish(topic, payload string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{topic, payload})
	return nil
}

type fakeEventRepo struct {
	events []models.Event
}

func (f *fakeEventRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeEventRepo) InsertEvent(ctx context.Context, event *models.Event) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) QueryEvents(ctx context.Context, start, end time.Time, page, pageSize int) ([]models.Event, error) {
	return append([]models.Event(nil), f.events...), nil
}

func (f *fakeEventRepo) CountEvents(ctx context.Context, start, end time.Time) (int64, error) {
	return int64(len(f.events)), nil
}

func (f *fakeEventRepo) SummarizeEvents(ctx context.Context, start, end time.Time) (models.EventSummary, error) {
	summary := models.EventSummary{}
	for _, event := range f.events {
		summary[event.TriggerType]++
	}
	return summary, nil
}

func (f *fakeEventRepo) DeleteOldEvents(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func controlService() (*HubService, *fakePublisher, *fakeEventRepo) {
	publisher := &fakePublisher{}
	events := &fakeEventRepo{}
	svc := &HubService{
		Events:    events,
		Publisher: publisher,
	}
	return svc, publisher, events
}

func TestControlMistingOnPublishesAndRecordsEvent(t *testing.T) {
	svc, publisher, events := controlService()

	err := svc.ControlMisting(context.Background(), "ON")
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	require.Equal(t, TopicControl, publisher.published[0].topic)
	require.Equal(t, "ON", publisher.published[0].payload)

	require.Len(t, events.events, 1)
	require.Equal(t, models.TriggerManualWebsite, events.events[0].TriggerType)
	require.Equal(t, "manual_activation", events.events[0].Reason)
}

func TestControlMistingOffPublishesWithoutEvent(t *testing.T) {
	svc, publisher, events := controlService()

	err := svc.ControlMisting(context.Background(), "OFF")
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	require.Equal(t, "OFF", publisher.published[0].payload)
	require.Empty(t, events.events)
}

func TestControlMistingRejectsInvalidAction(t *testing.T) {
	svc, publisher, _ := controlService()

	for _, action := range []string{"on", "toggle", "", "1"} {
		err := svc.ControlMisting(context.Background(), action)
		require.Error(t, err)
		require.True(t, errors.IsValidation(err), "action %q should be a validation error", action)
	}
	require.Empty(t, publisher.published)
}

func TestControlMistingPublishFailure(t *testing.T) {
	svc, publisher, events := controlService()
	publisher.err = errors.NewUnavailableError("broker down", nil)

	err := svc.ControlMisting(context.Background(), "ON")
	require.Error(t, err)
	// No event record when the command never left the hub
	require.Empty(t, events.events)
}

func TestSetModePublishes(t *testing.T) {
	svc, publisher, _ := controlService()

	for _, mode := range []string{"MANUAL", "AUTO", "CONTINUOUS"} {
		require.NoError(t, svc.SetMode(context.Background(), mode))
	}

	require.Len(t, publisher.published, 3)
	for _, msg := range publisher.published {
		require.Equal(t, TopicModeSet, msg.topic)
	}
}

func TestSetModeRejectsInvalidMode(t *testing.T) {
	svc, publisher, _ := controlService()

	for _, mode := range []string{"auto", "ECO", ""} {
		err := svc.SetMode(context.Background(), mode)
		require.Error(t, err)
		require.True(t, errors.IsValidation(err), "mode %q should be a validation error", mode)
	}
	require.Empty(t, publisher.published)
}

func TestQueryEventsPaginates(t *testing.T) {
	svc, _, events := controlService()
	now := time.Now()
	for i := 0; i < 3; i++ {
		events.events = append(events.events, models.Event{
			Timestamp:   now.Add(time.Duration(-i) * time.Minute),
			TriggerType: models.TriggerImageDetection,
		})
	}

	page, err := svc.QueryEvents(context.Background(), models.EventFilters{})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, 1, page.Page)
	require.Len(t, page.Events, 3)
}
