package controllers

import (
	"net/http"
	"strconv"

	"github.com/opsdeck/scenario-hub/services"
)

// LogController exposes the activity and error logs
type LogController struct {
	services *services.Services
}

// NewLogController creates a new log controller
func NewLogController(services *services.Services) *LogController {
	return &LogController{services: services}
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// Activity handles GET /api/logs/activity
func (lc *LogController) Activity(w http.ResponseWriter, r *http.Request) {
	entries, err := lc.services.Log.ActivityLog(r.Context(), queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, entries)
}

// Errors handles GET /api/logs/errors
func (lc *LogController) Errors(w http.ResponseWriter, r *http.Request) {
	entries, err := lc.services.Log.ErrorLog(r.Context(), queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, entries)
}
