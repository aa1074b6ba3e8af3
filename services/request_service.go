package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/events"
	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/storage"
	"github.com/opsdeck/scenario-hub/userctx"
)

// RequestService interface defines the scenario request workflow logic:
// creation, owner edits, status transitions, comments and file attachments.
type RequestService interface {
	List(ctx context.Context, filter repositories.RequestFilter) ([]models.ScenarioRequest, error)
	Get(ctx context.Context, id string) (*models.ScenarioRequest, error)
	Create(ctx context.Context, form *models.ScenarioRequestForm) (*models.ScenarioRequest, error)
	Update(ctx context.Context, id string, form *models.ScenarioRequestForm) (*models.ScenarioRequest, error)
	Transition(ctx context.Context, id string, form *models.TransitionForm) (*models.ScenarioRequest, error)
	AddComment(ctx context.Context, id string, form *models.CommentForm) (*models.Comment, error)
	AttachFile(ctx context.Context, id string, kind models.FileKind, name, contentType, comment string, content io.Reader) (*models.FileAttachment, error)
	OpenFile(ctx context.Context, requestID, fileID string) (*models.FileAttachment, io.ReadCloser, error)
	PreviewFile(ctx context.Context, requestID, fileID string) (*models.FileAttachment, *storage.Preview, error)
}

// requestService implements RequestService interface
type requestService struct {
	requestRepo repositories.RequestRepository
	domainRepo  repositories.DomainRepository
	files       *storage.FileStore
	publisher   events.Publisher
	logger      *zap.Logger
}

// NewRequestService creates a new scenario request service
func NewRequestService(
	requestRepo repositories.RequestRepository,
	domainRepo repositories.DomainRepository,
	files *storage.FileStore,
	publisher events.Publisher,
	logger *zap.Logger,
) RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &requestService{
		requestRepo: requestRepo,
		domainRepo:  domainRepo,
		files:       files,
		publisher:   publisher,
		logger:      logger,
	}
}

// isEditor reports whether the context user may act on requests they do not
// own. Admins count as editors everywhere.
func isEditor(ctx context.Context) bool {
	return userctx.HasRole(ctx, models.RoleEditor) || userctx.HasRole(ctx, models.RoleAdmin)
}

// List retrieves scenario requests matching the filter
func (s *requestService) List(ctx context.Context, filter repositories.RequestFilter) ([]models.ScenarioRequest, error) {
	return s.requestRepo.List(ctx, filter)
}

// Get retrieves a scenario request with its full history
func (s *requestService) Get(ctx context.Context, id string) (*models.ScenarioRequest, error) {
	if id == "" {
		return nil, fmt.Errorf("request ID is required: %w", models.ErrValidation)
	}
	return s.requestRepo.GetByID(ctx, id)
}

// Create submits a new scenario request in the submitted state
func (s *requestService) Create(ctx context.Context, form *models.ScenarioRequestForm) (*models.ScenarioRequest, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	domain, err := s.domainRepo.GetByID(ctx, form.DomainID)
	if err != nil {
		return nil, err
	}
	if !domain.Active {
		return nil, fmt.Errorf("domain %s is inactive: %w", domain.Name, models.ErrValidation)
	}

	request := &models.ScenarioRequest{
		ID:          uuid.NewString(),
		Requester:   userctx.GetUserEmail(ctx),
		DomainID:    form.DomainID,
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Status:      models.StatusSubmitted,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create scenario request: %w", err)
	}
	request.DomainName = domain.Name

	return request, nil
}

// Update edits the free-text fields of a request. Owners may only edit
// while the request is in an owner-editable status; editors and admins may
// edit in any status. Status is never changed here.
func (s *requestService) Update(ctx context.Context, id string, form *models.ScenarioRequestForm) (*models.ScenarioRequest, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor := userctx.GetUserEmail(ctx)
	if !isEditor(ctx) {
		if request.Requester != actor {
			return nil, fmt.Errorf("only the requester or an editor may edit this request: %w", models.ErrForbidden)
		}
		if !request.Status.OwnerEditable() {
			return nil, fmt.Errorf("request in status %s can no longer be edited by its owner: %w", request.Status, models.ErrForbidden)
		}
	}

	if form.DomainID != request.DomainID {
		if _, err := s.domainRepo.GetByID(ctx, form.DomainID); err != nil {
			return nil, err
		}
	}

	request.Name = strings.TrimSpace(form.Name)
	request.Description = form.Description
	request.DomainID = form.DomainID

	if err := s.requestRepo.UpdateFields(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update scenario request: %w", err)
	}

	return s.requestRepo.GetByID(ctx, id)
}

// Transition moves a request to a new status. Only editors and admins may
// change status, the target must belong to the status enum, and a non-empty
// comment is required because the status actually changes. On success
// exactly one workflow event is appended; on rejection nothing is written.
func (s *requestService) Transition(ctx context.Context, id string, form *models.TransitionForm) (*models.ScenarioRequest, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	if !isEditor(ctx) {
		return nil, fmt.Errorf("only editors may change request status: %w", models.ErrForbidden)
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.Status == form.Status {
		return nil, fmt.Errorf("request is already in status %s: %w", form.Status, models.ErrValidation)
	}

	comment := strings.TrimSpace(form.Comment)
	if comment == "" {
		return nil, fmt.Errorf("a comment is required when changing status: %w", models.ErrValidation)
	}

	actor := userctx.GetUserEmail(ctx)
	event := &models.WorkflowEvent{
		ID:         uuid.NewString(),
		RequestID:  request.ID,
		FromStatus: request.Status,
		ToStatus:   form.Status,
		Actor:      actor,
		Comment:    comment,
	}
	commentRecord := &models.Comment{
		ID:        uuid.NewString(),
		RequestID: request.ID,
		Author:    actor,
		Text:      comment,
	}

	if err := s.requestRepo.Transition(ctx, request.ID, request.Status, form.Status, event, commentRecord); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishTransition(ctx, events.TransitionEvent{
		RequestID:  request.ID,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		Actor:      actor,
		Comment:    comment,
		OccurredAt: event.CreatedAt,
	}); err != nil {
		// Downstream notification is best-effort; the transition is committed
		s.logger.Warn("failed to publish transition event",
			zap.String("request_id", request.ID),
			zap.Error(err))
	}

	return s.requestRepo.GetByID(ctx, id)
}

// AddComment appends a comment to a request. Comments are immutable once
// written.
func (s *requestService) AddComment(ctx context.Context, id string, form *models.CommentForm) (*models.Comment, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		RequestID: id,
		Author:    userctx.GetUserEmail(ctx),
		Text:      strings.TrimSpace(form.Text),
	}
	if err := s.requestRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// AttachFile stores an uploaded file and records it against the request.
// Sample files may be uploaded by the requester while the request is still
// owner-editable, or by editors at any point. Bucket files are restricted
// to editors and only once the request has reached accepted.
func (s *requestService) AttachFile(ctx context.Context, id string, kind models.FileKind, name, contentType, comment string, content io.Reader) (*models.FileAttachment, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown file kind %s: %w", kind, models.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("file name is required: %w", models.ErrValidation)
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor := userctx.GetUserEmail(ctx)
	switch kind {
	case models.FileKindSample:
		if !isEditor(ctx) {
			if request.Requester != actor {
				return nil, fmt.Errorf("only the requester or an editor may attach sample files: %w", models.ErrForbidden)
			}
			if !request.Status.OwnerEditable() {
				return nil, fmt.Errorf("sample files can no longer be attached in status %s: %w", request.Status, models.ErrForbidden)
			}
		}
	case models.FileKindBucket:
		if !isEditor(ctx) {
			return nil, fmt.Errorf("only editors may deliver bucket files: %w", models.ErrForbidden)
		}
		if !request.Status.AtLeast(models.StatusAccepted) {
			return nil, fmt.Errorf("bucket files may only be delivered once the request is accepted: %w", models.ErrValidation)
		}
	}

	file := &models.FileAttachment{
		ID:          uuid.NewString(),
		RequestID:   request.ID,
		Kind:        kind,
		Name:        name,
		ContentType: contentType,
		UploadedBy:  actor,
		Comment:     strings.TrimSpace(comment),
	}

	path, err := s.files.Save(request.ID, string(kind), file.ID+"_"+name, content)
	if err != nil {
		return nil, err
	}
	file.StoragePath = path

	if err := s.requestRepo.AddFile(ctx, file); err != nil {
		return nil, err
	}

	return file, nil
}

// getFile loads a file record and checks it belongs to the given request
func (s *requestService) getFile(ctx context.Context, requestID, fileID string) (*models.FileAttachment, error) {
	file, err := s.requestRepo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.RequestID != requestID {
		return nil, fmt.Errorf("file %s: %w", fileID, models.ErrNotFound)
	}
	return file, nil
}

// OpenFile returns the attachment record and a reader over its raw bytes
func (s *requestService) OpenFile(ctx context.Context, requestID, fileID string) (*models.FileAttachment, io.ReadCloser, error) {
	file, err := s.getFile(ctx, requestID, fileID)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.files.Open(file.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return file, reader, nil
}

// PreviewFile returns a structured preview of a stored attachment
func (s *requestService) PreviewFile(ctx context.Context, requestID, fileID string) (*models.FileAttachment, *storage.Preview, error) {
	file, err := s.getFile(ctx, requestID, fileID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.files.ReadAll(file.StoragePath)
	if err != nil {
		return nil, nil, err
	}

	preview, err := storage.BuildPreview(file.Name, data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", err.Error(), models.ErrValidation)
	}

	return file, preview, nil
}
