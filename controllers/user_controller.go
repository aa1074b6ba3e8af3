package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/services"
)

// UserController handles user and group administration endpoints
type UserController struct {
	services *services.Services
}

// NewUserController creates a new user controller
func NewUserController(services *services.Services) *UserController {
	return &UserController{services: services}
}

// urlID parses the {id} route parameter as an integer
func urlID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, models.ErrValidation
	}
	return id, nil
}

// List handles GET /api/users
func (uc *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := uc.services.User.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}
func (uc *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := uc.services.User.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

// Create handles POST /api/users
func (uc *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.UserForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	user, err := uc.services.User.CreateUser(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, user)
}

// Update handles PUT /api/users/{id}
func (uc *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.UserForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	user, err := uc.services.User.UpdateUser(r.Context(), id, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

// Deactivate handles DELETE /api/users/{id}
func (uc *UserController) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := uc.services.User.DeactivateUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"deactivated": true})
}

// ListGroups handles GET /api/groups
func (uc *UserController) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := uc.services.User.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, groups)
}

// GetGroup handles GET /api/groups/{id}
func (uc *UserController) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	group, err := uc.services.User.GetGroupByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, group)
}

// CreateGroup handles POST /api/groups
func (uc *UserController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var form models.GroupForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	group, err := uc.services.User.CreateGroup(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, group)
}

// UpdateGroup handles PUT /api/groups/{id}
func (uc *UserController) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form models.GroupForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	group, err := uc.services.User.UpdateGroup(r.Context(), id, &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/groups/{id}
func (uc *UserController) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := uc.services.User.DeleteGroup(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
