package controllers

import (
	"net/http"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/services"
)

// FeedbackController handles user feedback endpoints
type FeedbackController struct {
	services *services.Services
}

// NewFeedbackController creates a new feedback controller
func NewFeedbackController(services *services.Services) *FeedbackController {
	return &FeedbackController{services: services}
}

// List handles GET /api/feedback
func (fc *FeedbackController) List(w http.ResponseWriter, r *http.Request) {
	entries, err := fc.services.Feedback.GetAllFeedback(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, entries)
}

// Submit handles POST /api/feedback
func (fc *FeedbackController) Submit(w http.ResponseWriter, r *http.Request) {
	var form models.FeedbackForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	feedback, err := fc.services.Feedback.SubmitFeedback(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, feedback)
}
