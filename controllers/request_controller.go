package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/services"
	"github.com/opsdeck/scenario-hub/userctx"
)

// Uploads larger than this are rejected before reading the body into memory
const maxUploadBytes = 32 << 20

// RequestController handles the scenario request workflow endpoints
type RequestController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewRequestController creates a new scenario request controller
func NewRequestController(services *services.Services, logger *zap.Logger) *RequestController {
	return &RequestController{services: services, logger: logger}
}

// List handles GET /api/requests. Supports ?status=, ?domain_id= and
// ?mine=true filters.
func (rc *RequestController) List(w http.ResponseWriter, r *http.Request) {
	var filter repositories.RequestFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(raw)
		if !status.Valid() {
			writeError(w, models.ErrValidation)
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("domain_id"); raw != "" {
		domainID, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, models.ErrValidation)
			return
		}
		filter.DomainID = domainID
	}
	if r.URL.Query().Get("mine") == "true" {
		filter.Requester = userctx.GetUserEmail(r.Context())
	}

	requests, err := rc.services.Request.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, requests)
}

// Get handles GET /api/requests/{id}, returning the request with its full
// comment, event and file history
func (rc *RequestController) Get(w http.ResponseWriter, r *http.Request) {
	request, err := rc.services.Request.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}

// Create handles POST /api/requests
func (rc *RequestController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.ScenarioRequestForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	request, err := rc.services.Request.Create(r.Context(), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, request)
}

// Update handles PUT /api/requests/{id}
func (rc *RequestController) Update(w http.ResponseWriter, r *http.Request) {
	var form models.ScenarioRequestForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	request, err := rc.services.Request.Update(r.Context(), chi.URLParam(r, "id"), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}

// Transition handles POST /api/requests/{id}/transition
func (rc *RequestController) Transition(w http.ResponseWriter, r *http.Request) {
	var form models.TransitionForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	request, err := rc.services.Request.Transition(r.Context(), chi.URLParam(r, "id"), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}

// AddComment handles POST /api/requests/{id}/comments
func (rc *RequestController) AddComment(w http.ResponseWriter, r *http.Request) {
	var form models.CommentForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}

	comment, err := rc.services.Request.AddComment(r.Context(), chi.URLParam(r, "id"), &form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, comment)
}

// UploadFile handles POST /api/requests/{id}/files/{kind}. The payload is
// multipart form data with a "file" part and an optional "comment" field.
func (rc *RequestController) UploadFile(w http.ResponseWriter, r *http.Request) {
	kind := models.FileKind(chi.URLParam(r, "kind"))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, models.ErrValidation)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, models.ErrValidation)
		return
	}
	defer part.Close()

	file, err := rc.services.Request.AttachFile(
		r.Context(),
		chi.URLParam(r, "id"),
		kind,
		header.Filename,
		header.Header.Get("Content-Type"),
		r.FormValue("comment"),
		part,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, file)
}

// DownloadFile handles GET /api/requests/{id}/files/{fileID}/content,
// streaming the stored bytes
func (rc *RequestController) DownloadFile(w http.ResponseWriter, r *http.Request) {
	file, reader, err := rc.services.Request.OpenFile(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "fileID"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer reader.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)

	if _, err := io.Copy(w, reader); err != nil {
		rc.logger.Warn("file download interrupted",
			zap.String("file_id", file.ID),
			zap.Error(err))
	}
}

// PreviewFile handles GET /api/requests/{id}/files/{fileID}/preview
func (rc *RequestController) PreviewFile(w http.ResponseWriter, r *http.Request) {
	file, preview, err := rc.services.Request.PreviewFile(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "fileID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"file":    file,
		"preview": preview,
	})
}
