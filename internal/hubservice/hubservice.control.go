// FilePath: internal/hubservice/hubservice.control.go
package hubservice

import (
	"context"
	"time"

	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Outbound command topics.
const (
	TopicControl = "misting/control"
	TopicModeSet = "misting/mode/set"
)

// ControlMisting republishes a manual actuator command to the transport.
// Turning the actuator ON persists a manual_website event; the command
// itself is not applied to the snapshot, which only changes once the
// controller reports back on misting/status.
func (s *HubService) ControlMisting(ctx context.Context, action string) error {
	if action != string(models.MistingOn) && action != string(models.MistingOff) {
		return errors.NewValidationError("invalid action, use ON or OFF", nil)
	}

	if err := s.Publisher.Publish(TopicControl, action); err != nil {
		return errors.NewUnavailableError("failed to publish control command", err)
	}

	if action == string(models.MistingOn) {
		event := models.Event{
			Timestamp:   time.Now(),
			TriggerType: models.TriggerManualWebsite,
			Reason:      "manual_activation",
		}
		if err := s.Events.InsertEvent(ctx, &event); err != nil {
			// The command went out; the missing event record is logged, not fatal.
			nuts.L.Errorf("[HubService] Failed to persist manual activation event: %v", err)
		}
	}
	return nil
}

// SetMode republishes an operating mode change to the transport.
func (s *HubService) SetMode(ctx context.Context, mode string) error {
	switch models.OperatingMode(mode) {
	case models.ModeManual, models.ModeAuto, models.ModeContinuous:
	default:
		return errors.NewValidationError("invalid mode, use MANUAL, AUTO or CONTINUOUS", nil)
	}

	if err := s.Publisher.Publish(TopicModeSet, mode); err != nil {
		return errors.NewUnavailableError("failed to publish mode command", err)
	}
	return nil
}
