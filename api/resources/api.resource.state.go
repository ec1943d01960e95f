// FilePath: api/resources/api.resource.state.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// StateHandlers encapsulates the current-state HTTP handlers
type StateHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Get current state
// @Description Get the point-in-time snapshot of sensors, average, actuator and detection state
// @Tags state
// @Produce json
// @Success 200 {object} models.Snapshot
// @Router /state [get]
func (h *StateHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.hubservice.GetSnapshot())
}

// Helper functions

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithServiceError preserves typed API errors from the service
// layer and wraps everything else as internal.
func respondWithServiceError(w http.ResponseWriter, err error, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}
