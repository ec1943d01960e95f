// FilePath: api/resources/api.resource.events.go
package resources

import (
	"net/http"
	"time"

	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/hubservice"
	"github.com/itsatony/misting-hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// EventHandlers encapsulates the event history HTTP handlers
type EventHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary List events
// @Description Get a page of persisted events within a time range, newest first
// @Tags events
// @Produce json
// @Param start query string false "Start time (RFC3339, default 24h before end)"
// @Param end query string false "End time (RFC3339, default now)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} hubservice.EventPage
// @Failure 400 {object} errors.APIError
// @Router /events [get]
func (h *EventHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.EventFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	page, err := h.hubservice.QueryEvents(r.Context(), filters)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

// @Summary Summarize events
// @Description Get per-trigger event counts within a time range
// @Tags events
// @Produce json
// @Param start query string false "Start time (RFC3339, default 24h before end)"
// @Param end query string false "End time (RFC3339, default now)"
// @Success 200 {object} models.EventSummary
// @Failure 400 {object} errors.APIError
// @Router /events/summary [get]
func (h *EventHandlers) SummarizeEvents(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.EventFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}
	filters.Normalize(time.Now())

	summary, err := h.hubservice.SummarizeEvents(r.Context(), *filters.Start, *filters.End)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
