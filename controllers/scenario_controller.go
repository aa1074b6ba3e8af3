package controllers

import (
	"net/http"
	"strconv"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/services"
)

// ScenarioController handles scenario and playboard configuration endpoints
type ScenarioController struct {
	services *services.Services
}

// NewScenarioController creates a new scenario controller
func NewScenarioController(services *services.Services) *ScenarioController {
	return &ScenarioController{services: services}
}

// List handles GET /api/scenarios with an optional ?domain_id filter
func (sc *ScenarioController) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("domain_id"); raw != "" {
		domainID, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, models.ErrValidation)
			return
		}
		scenarios, err := sc.services.Scenario.GetScenariosByDomain(r.Context(), domainID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, scenarios)
		return
	}

	scenarios, err := sc.services.Scenario.GetAllScenarios(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, scenarios)
}

// Get handles GET /api/scenarios/{id}
func (sc *ScenarioController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	scenario, err := sc.services.Scenario.GetScenarioByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, scenario)
}

// Create handles POST /api/scenarios
func (sc *ScenarioController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.ScenarioForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	scenario, err := sc.services.Scenario.CreateScenario(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, scenario)
}

// Update handles PUT /api/scenarios/{id}
func (sc *ScenarioController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.ScenarioForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	scenario, err := sc.services.Scenario.UpdateScenario(r.Context(), id, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, scenario)
}

// ListPlayboards handles GET /api/scenarios/{id}/playboards
func (sc *ScenarioController) ListPlayboards(w http.ResponseWriter, r *http.Request) {
	scenarioID, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	boards, err := sc.services.Scenario.GetPlayboards(r.Context(), scenarioID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, boards)
}

// CreatePlayboard handles POST /api/playboards
func (sc *ScenarioController) CreatePlayboard(w http.ResponseWriter, r *http.Request) {
	var form models.PlayboardForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	board, err := sc.services.Scenario.CreatePlayboard(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, board)
}

// GetPlayboard handles GET /api/playboards/{id}
func (sc *ScenarioController) GetPlayboard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	board, err := sc.services.Scenario.GetPlayboardByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, board)
}

// UpdatePlayboard handles PUT /api/playboards/{id}
func (sc *ScenarioController) UpdatePlayboard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.PlayboardForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	board, err := sc.services.Scenario.UpdatePlayboard(r.Context(), id, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, board)
}

// DeletePlayboard handles DELETE /api/playboards/{id}
func (sc *ScenarioController) DeletePlayboard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := sc.services.Scenario.DeletePlayboard(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
