// FilePath: api/resources/api.resource.control.go
package resources

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// ControlHandlers encapsulates the outbound command HTTP handlers
type ControlHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Control misting actuator
// @Description Republish a manual ON/OFF command to the transport
// @Tags control
// @Accept json
// @Produce json
// @Param command body object true "Command, e.g. {\"action\":\"ON\"}"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /control/misting [post]
func (h *ControlHandlers) ControlMisting(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var body struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.ControlMisting(r.Context(), body.Action); err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Misting system turned %s", body.Action),
	})
}

// @Summary Set operating mode
// @Description Republish an operating mode command to the transport
// @Tags control
// @Accept json
// @Produce json
// @Param command body object true "Command, e.g. {\"mode\":\"AUTO\"}"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /control/mode [post]
func (h *ControlHandlers) SetMode(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.hubservice.SetMode(r.Context(), body.Mode); err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Operating mode set to %s", body.Mode),
	})
}
