package controllers

import (
	"net/http"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/services"
)

// LookupController serves the static enumerations the frontend builds its
// selects from
type LookupController struct {
	services *services.Services
}

// NewLookupController creates a new lookup controller
func NewLookupController(services *services.Services) *LookupController {
	return &LookupController{services: services}
}

// Statuses handles GET /api/lookups/statuses
func (lc *LookupController) Statuses(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, models.AllStatuses())
}

// FeedbackCategories handles GET /api/lookups/feedback-categories
func (lc *LookupController) FeedbackCategories(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, models.FeedbackCategories())
}

// FileKinds handles GET /api/lookups/file-kinds
func (lc *LookupController) FileKinds(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, []models.FileKind{models.FileKindSample, models.FileKindBucket})
}

// Roles handles GET /api/lookups/roles, backed by the roles table so custom
// roles show up too
func (lc *LookupController) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := lc.services.User.ListRoles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, roles)
}
