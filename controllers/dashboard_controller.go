package controllers

import (
	"net/http"

	"github.com/opsdeck/scenario-hub/services"
)

// DashboardController serves the aggregate counts shown on the landing page
type DashboardController struct {
	services *services.Services
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(services *services.Services) *DashboardController {
	return &DashboardController{services: services}
}

// RequestStats handles GET /api/dashboard/stats
func (dc *DashboardController) RequestStats(w http.ResponseWriter, r *http.Request) {
	stats, err := dc.services.Stats.RequestStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}
