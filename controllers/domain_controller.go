package controllers

import (
	"net/http"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/services"
)

// DomainController handles business domain configuration endpoints
type DomainController struct {
	services *services.Services
}

// NewDomainController creates a new domain controller
func NewDomainController(services *services.Services) *DomainController {
	return &DomainController{services: services}
}

// List handles GET /api/domains. ?active=true narrows to active domains,
// which is what the request form dropdown uses.
func (dc *DomainController) List(w http.ResponseWriter, r *http.Request) {
	var (
		domains []models.Domain
		err     error
	)
	if r.URL.Query().Get("active") == "true" {
		domains, err = dc.services.Domain.GetActiveDomains(r.Context())
	} else {
		domains, err = dc.services.Domain.GetAllDomains(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, domains)
}

// Get handles GET /api/domains/{id}
func (dc *DomainController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	domain, err := dc.services.Domain.GetDomainByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, domain)
}

// Create handles POST /api/domains
func (dc *DomainController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.DomainForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	domain, err := dc.services.Domain.CreateDomain(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, domain)
}

// Update handles PUT /api/domains/{id}
func (dc *DomainController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.DomainForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	domain, err := dc.services.Domain.UpdateDomain(r.Context(), id, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, domain)
}
