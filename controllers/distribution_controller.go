package controllers

import (
	"net/http"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/services"
)

// DistributionController handles email distribution list endpoints
type DistributionController struct {
	services *services.Services
}

// NewDistributionController creates a new distribution list controller
func NewDistributionController(services *services.Services) *DistributionController {
	return &DistributionController{services: services}
}

// List handles GET /api/distribution-lists
func (dc *DistributionController) List(w http.ResponseWriter, r *http.Request) {
	lists, err := dc.services.Distribution.GetAllLists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, lists)
}

// Get handles GET /api/distribution-lists/{id}
func (dc *DistributionController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := dc.services.Distribution.GetListByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

// Create handles POST /api/distribution-lists
func (dc *DistributionController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.DistributionListForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	list, err := dc.services.Distribution.CreateList(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, list)
}

// Update handles PUT /api/distribution-lists/{id}
func (dc *DistributionController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.DistributionListForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	list, err := dc.services.Distribution.UpdateList(r.Context(), id, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

// Delete handles DELETE /api/distribution-lists/{id}
func (dc *DistributionController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := dc.services.Distribution.DeleteList(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
