package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/security"
	"github.com/opsdeck/scenario-hub/services"
)

// apiResponse is the envelope every JSON endpoint uses
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

// writeError maps service errors onto HTTP status codes through the shared
// sentinel errors
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, apiResponse{
			Error: &apiError{Code: "NOT_FOUND", Message: err.Error()},
		})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, apiResponse{
			Error: &apiError{Code: "FORBIDDEN", Message: err.Error()},
		})
	case errors.Is(err, models.ErrValidation):
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Error: &apiError{Code: "VALIDATION", Message: err.Error()},
		})
	default:
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Error: &apiError{Code: "INTERNAL", Message: "internal server error"},
		})
	}
}

// decodeBody parses a JSON request body into dst, returning a validation
// error for malformed payloads
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.ErrValidation
	}
	return nil
}

// Controllers holds all controller instances
type Controllers struct {
	Auth         *AuthController
	Dashboard    *DashboardController
	User         *UserController
	Domain       *DomainController
	Scenario     *ScenarioController
	Request      *RequestController
	Feedback     *FeedbackController
	Distribution *DistributionController
	Log          *LogController
	Lookup       *LookupController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, signer *security.JWTSigner, logger *zap.Logger) *Controllers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controllers{
		Auth:         NewAuthController(services, signer, logger.Named("auth")),
		Dashboard:    NewDashboardController(services),
		User:         NewUserController(services),
		Domain:       NewDomainController(services),
		Scenario:     NewScenarioController(services),
		Request:      NewRequestController(services, logger.Named("requests")),
		Feedback:     NewFeedbackController(services),
		Distribution: NewDistributionController(services),
		Log:          NewLogController(services),
		Lookup:       NewLookupController(services),
	}
}
