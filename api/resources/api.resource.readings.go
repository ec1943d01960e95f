// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/hubservice"
	"github.com/itsatony/misting-hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingHandlers encapsulates the reading history HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Get reading history
// @Description Get persisted readings for one stream, newest first
// @Tags readings
// @Produce json
// @Param streamKey path string true "Stream key (sensor1, sensor2, average)"
// @Param limit query int false "Maximum number of readings (default 100, max 1000)"
// @Success 200 {array} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /readings/{streamKey} [get]
func (h *ReadingHandlers) GetReadings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := models.StreamKey(vars["streamKey"])
	requestID := nuts.NID("req", 12)

	if !models.ValidStreamKey(key) {
		respondWithError(w, errors.NewValidationError("unknown stream key", nil).WithRequestID(requestID))
		return
	}

	var filters models.ReadingFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}
	filters.Normalize()

	readings, err := h.hubservice.QueryReadings(r.Context(), key, filters.Limit)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}
