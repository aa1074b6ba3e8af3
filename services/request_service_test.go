package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/opsdeck/scenario-hub/events"
	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/storage"
	"github.com/opsdeck/scenario-hub/userctx"
)

// fakeRequestRepo is an in-memory RequestRepository for service tests
type fakeRequestRepo struct {
	requests map[string]*models.ScenarioRequest
	comments []models.Comment
	events   []models.WorkflowEvent
	files    map[string]*models.FileAttachment
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[string]*models.ScenarioRequest),
		files:    make(map[string]*models.FileAttachment),
	}
}

func (f *fakeRequestRepo) List(ctx context.Context, filter repositories.RequestFilter) ([]models.ScenarioRequest, error) {
	var out []models.ScenarioRequest
	for _, request := range f.requests {
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		if filter.Requester != "" && request.Requester != filter.Requester {
			continue
		}
		if filter.DomainID != 0 && request.DomainID != filter.DomainID {
			continue
		}
		out = append(out, *request)
	}
	return out, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*models.ScenarioRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("scenario request %s: %w", id, models.ErrNotFound)
	}
	copied := *request
	for _, comment := range f.comments {
		if comment.RequestID == id {
			copied.Comments = append(copied.Comments, comment)
		}
	}
	for _, event := range f.events {
		if event.RequestID == id {
			copied.Events = append(copied.Events, event)
		}
	}
	return &copied, nil
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.ScenarioRequest) error {
	stored := *request
	f.requests[request.ID] = &stored
	return nil
}

func (f *fakeRequestRepo) UpdateFields(ctx context.Context, request *models.ScenarioRequest) error {
	stored, ok := f.requests[request.ID]
	if !ok {
		return fmt.Errorf("scenario request %s: %w", request.ID, models.ErrNotFound)
	}
	stored.Name = request.Name
	stored.Description = request.Description
	stored.DomainID = request.DomainID
	return nil
}

func (f *fakeRequestRepo) Transition(ctx context.Context, id string, from, to models.Status, event *models.WorkflowEvent, comment *models.Comment) error {
	stored, ok := f.requests[id]
	if !ok {
		return fmt.Errorf("scenario request %s: %w", id, models.ErrNotFound)
	}
	if stored.Status != from {
		return fmt.Errorf("request is no longer in status %s: %w", from, models.ErrValidation)
	}
	stored.Status = to
	f.events = append(f.events, *event)
	if comment != nil {
		comment.OrderIndex = len(f.comments) + 1
		f.comments = append(f.comments, *comment)
	}
	return nil
}

func (f *fakeRequestRepo) AddComment(ctx context.Context, comment *models.Comment) error {
	if _, ok := f.requests[comment.RequestID]; !ok {
		return fmt.Errorf("scenario request %s: %w", comment.RequestID, models.ErrNotFound)
	}
	comment.OrderIndex = len(f.comments) + 1
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeRequestRepo) AddFile(ctx context.Context, file *models.FileAttachment) error {
	version := 1
	for _, existing := range f.files {
		if existing.RequestID == file.RequestID && existing.Kind == file.Kind && existing.Name == file.Name {
			if existing.Version >= version {
				version = existing.Version + 1
			}
		}
	}
	file.Version = version
	stored := *file
	f.files[file.ID] = &stored
	return nil
}

func (f *fakeRequestRepo) GetFileByID(ctx context.Context, fileID string) (*models.FileAttachment, error) {
	file, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, models.ErrNotFound)
	}
	copied := *file
	return &copied, nil
}

func (f *fakeRequestRepo) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	counts := make(map[models.Status]int)
	for _, request := range f.requests {
		counts[request.Status]++
	}
	return counts, nil
}

// fakeDomainRepo serves a fixed domain set
type fakeDomainRepo struct {
	domains map[int]*models.Domain
}

func (f *fakeDomainRepo) GetAll(ctx context.Context) ([]models.Domain, error)    { return nil, nil }
func (f *fakeDomainRepo) GetActive(ctx context.Context) ([]models.Domain, error) { return nil, nil }
func (f *fakeDomainRepo) Create(ctx context.Context, domain *models.Domain) error {
	return nil
}
func (f *fakeDomainRepo) Update(ctx context.Context, domain *models.Domain) error {
	return nil
}
func (f *fakeDomainRepo) GetByID(ctx context.Context, id int) (*models.Domain, error) {
	domain, ok := f.domains[id]
	if !ok {
		return nil, fmt.Errorf("domain with ID %d: %w", id, models.ErrNotFound)
	}
	return domain, nil
}

// recordingPublisher captures published transition events
type recordingPublisher struct {
	published []events.TransitionEvent
}

func (p *recordingPublisher) PublishTransition(ctx context.Context, event events.TransitionEvent) error {
	p.published = append(p.published, event)
	return nil
}
func (p *recordingPublisher) Close() error { return nil }

// RequestServiceTestSuite exercises the workflow rules end to end against
// in-memory fakes
type RequestServiceTestSuite struct {
	suite.Suite
	service     RequestService
	requestRepo *fakeRequestRepo
	publisher   *recordingPublisher
	files       *storage.FileStore
}

func (suite *RequestServiceTestSuite) SetupTest() {
	suite.requestRepo = newFakeRequestRepo()
	suite.publisher = &recordingPublisher{}

	files, err := storage.NewFileStore(suite.T().TempDir())
	suite.Require().NoError(err)
	suite.files = files

	domainRepo := &fakeDomainRepo{domains: map[int]*models.Domain{
		1: {ID: 1, Name: "settlements", Active: true},
		2: {ID: 2, Name: "dormant", Active: false},
	}}

	suite.service = NewRequestService(suite.requestRepo, domainRepo, files, suite.publisher, nil)
}

func ownerCtx(email string) context.Context {
	ctx := userctx.SetUserEmail(context.Background(), email)
	return userctx.SetUserRoles(ctx, []string{models.RoleUser})
}

func editorCtx(email string) context.Context {
	ctx := userctx.SetUserEmail(context.Background(), email)
	return userctx.SetUserRoles(ctx, []string{models.RoleEditor})
}

func (suite *RequestServiceTestSuite) createRequest(ctx context.Context) *models.ScenarioRequest {
	request, err := suite.service.Create(ctx, &models.ScenarioRequestForm{
		DomainID:    1,
		Name:        "Late settlement detection",
		Description: "Flag trades settling after the deadline",
	})
	suite.Require().NoError(err)
	return request
}

func (suite *RequestServiceTestSuite) TestCreateStartsSubmitted() {
	request := suite.createRequest(ownerCtx("alice@example.com"))

	assert.Equal(suite.T(), models.StatusSubmitted, request.Status)
	assert.Equal(suite.T(), "alice@example.com", request.Requester)
	assert.NotEmpty(suite.T(), request.ID)
	assert.Equal(suite.T(), "settlements", request.DomainName)
}

func (suite *RequestServiceTestSuite) TestCreateRejectsInactiveDomain() {
	_, err := suite.service.Create(ownerCtx("alice@example.com"), &models.ScenarioRequestForm{
		DomainID: 2,
		Name:     "Anything",
	})
	assert.ErrorIs(suite.T(), err, models.ErrValidation)
}

func (suite *RequestServiceTestSuite) TestOwnerCanEditWhileSubmitted() {
	ctx := ownerCtx("alice@example.com")
	request := suite.createRequest(ctx)

	updated, err := suite.service.Update(ctx, request.ID, &models.ScenarioRequestForm{
		DomainID: 1,
		Name:     "Late settlement detection v2",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Late settlement detection v2", updated.Name)
}

func (suite *RequestServiceTestSuite) TestOwnerCannotEditAfterReview() {
	owner := ownerCtx("alice@example.com")
	editor := editorCtx("bob@example.com")
	request := suite.createRequest(owner)

	_, err := suite.service.Transition(editor, request.ID, &models.TransitionForm{
		Status:  models.StatusInReview,
		Comment: "picking this up",
	})
	suite.Require().NoError(err)

	_, err = suite.service.Update(owner, request.ID, &models.ScenarioRequestForm{
		DomainID: 1,
		Name:     "sneaky edit",
	})
	assert.ErrorIs(suite.T(), err, models.ErrForbidden)
}

func (suite *RequestServiceTestSuite) TestStrangerCannotEdit() {
	request := suite.createRequest(ownerCtx("alice@example.com"))

	_, err := suite.service.Update(ownerCtx("mallory@example.com"), request.ID, &models.ScenarioRequestForm{
		DomainID: 1,
		Name:     "hijack",
	})
	assert.ErrorIs(suite.T(), err, models.ErrForbidden)
}

func (suite *RequestServiceTestSuite) TestOwnerCannotTransition() {
	owner := ownerCtx("alice@example.com")
	request := suite.createRequest(owner)

	_, err := suite.service.Transition(owner, request.ID, &models.TransitionForm{
		Status:  models.StatusAccepted,
		Comment: "self approval",
	})
	assert.ErrorIs(suite.T(), err, models.ErrForbidden)
	assert.Empty(suite.T(), suite.requestRepo.events)
}

func (suite *RequestServiceTestSuite) TestTransitionRequiresComment() {
	request := suite.createRequest(ownerCtx("alice@example.com"))

	_, err := suite.service.Transition(editorCtx("bob@example.com"), request.ID, &models.TransitionForm{
		Status:  models.StatusInReview,
		Comment: "   ",
	})
	assert.ErrorIs(suite.T(), err, models.ErrValidation)
	assert.Empty(suite.T(), suite.requestRepo.events)
}

func (suite *RequestServiceTestSuite) TestTransitionRejectsSameStatus() {
	request := suite.createRequest(ownerCtx("alice@example.com"))

	_, err := suite.service.Transition(editorCtx("bob@example.com"), request.ID, &models.TransitionForm{
		Status:  models.StatusSubmitted,
		Comment: "no-op",
	})
	assert.ErrorIs(suite.T(), err, models.ErrValidation)
}

func (suite *RequestServiceTestSuite) TestTransitionRejectsUnknownStatus() {
	request := suite.createRequest(ownerCtx("alice@example.com"))

	_, err := suite.service.Transition(editorCtx("bob@example.com"), request.ID, &models.TransitionForm{
		Status:  "done",
		Comment: "made-up state",
	})
	assert.ErrorIs(suite.T(), err, models.ErrValidation)
}

func (suite *RequestServiceTestSuite) TestTransitionAppendsEventCommentAndPublishes() {
	request := suite.createRequest(ownerCtx("alice@example.com"))

	updated, err := suite.service.Transition(editorCtx("bob@example.com"), request.ID, &models.TransitionForm{
		Status:  models.StatusInReview,
		Comment: "taking a look",
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.StatusInReview, updated.Status)
	suite.Require().Len(updated.Events, 1)
	assert.Equal(suite.T(), models.StatusSubmitted, updated.Events[0].FromStatus)
	assert.Equal(suite.T(), models.StatusInReview, updated.Events[0].ToStatus)
	assert.Equal(suite.T(), "bob@example.com", updated.Events[0].Actor)

	suite.Require().Len(updated.Comments, 1)
	assert.Equal(suite.T(), "taking a look", updated.Comments[0].Text)

	suite.Require().Len(suite.publisher.published, 1)
	assert.Equal(suite.T(), request.ID, suite.publisher.published[0].RequestID)
}

func (suite *RequestServiceTestSuite) TestAddCommentOrdering() {
	owner := ownerCtx("alice@example.com")
	request := suite.createRequest(owner)

	first, err := suite.service.AddComment(owner, request.ID, &models.CommentForm{Text: "first"})
	suite.Require().NoError(err)
	second, err := suite.service.AddComment(owner, request.ID, &models.CommentForm{Text: "second"})
	suite.Require().NoError(err)

	assert.Less(suite.T(), first.OrderIndex, second.OrderIndex)
}

func (suite *RequestServiceTestSuite) TestSampleFileByOwner() {
	owner := ownerCtx("alice@example.com")
	request := suite.createRequest(owner)

	file, err := suite.service.AttachFile(owner, request.ID, models.FileKindSample,
		"trades.csv", "text/csv", "example rows", strings.NewReader("id\n1\n"))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 1, file.Version)
	assert.Equal(suite.T(), "alice@example.com", file.UploadedBy)

	_, data, err := suite.service.PreviewFile(owner, request.ID, file.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), storage.PreviewGrid, data.Type)
}

func (suite *RequestServiceTestSuite) TestSampleFileVersionIncrements() {
	owner := ownerCtx("alice@example.com")
	request := suite.createRequest(owner)

	first, err := suite.service.AttachFile(owner, request.ID, models.FileKindSample,
		"trades.csv", "text/csv", "", strings.NewReader("v1"))
	suite.Require().NoError(err)
	second, err := suite.service.AttachFile(owner, request.ID, models.FileKindSample,
		"trades.csv", "text/csv", "", strings.NewReader("v2"))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), 1, first.Version)
	assert.Equal(suite.T(), 2, second.Version)

	// Prior version content still readable
	_, reader, err := suite.service.OpenFile(owner, request.ID, first.ID)
	suite.Require().NoError(err)
	reader.Close()
}

func (suite *RequestServiceTestSuite) TestBucketFileRequiresEditor() {
	owner := ownerCtx("alice@example.com")
	request := suite.createRequest(owner)

	_, err := suite.service.AttachFile(owner, request.ID, models.FileKindBucket,
		"delivery.csv", "text/csv", "", strings.NewReader("data"))
	assert.ErrorIs(suite.T(), err, models.ErrForbidden)
}

func (suite *RequestServiceTestSuite) TestBucketFileRequiresAcceptedStatus() {
	owner := ownerCtx("alice@example.com")
	editor := editorCtx("bob@example.com")
	request := suite.createRequest(owner)

	_, err := suite.service.AttachFile(editor, request.ID, models.FileKindBucket,
		"delivery.csv", "text/csv", "", strings.NewReader("data"))
	assert.ErrorIs(suite.T(), err, models.ErrValidation)

	_, err = suite.service.Transition(editor, request.ID, &models.TransitionForm{
		Status:  models.StatusAccepted,
		Comment: "approved",
	})
	suite.Require().NoError(err)

	file, err := suite.service.AttachFile(editor, request.ID, models.FileKindBucket,
		"delivery.csv", "text/csv", "first cut", strings.NewReader("data"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.FileKindBucket, file.Kind)
}

func (suite *RequestServiceTestSuite) TestBucketFileRejectedOnBranchStates() {
	owner := ownerCtx("alice@example.com")
	editor := editorCtx("bob@example.com")
	request := suite.createRequest(owner)

	_, err := suite.service.Transition(editor, request.ID, &models.TransitionForm{
		Status:  models.StatusRejected,
		Comment: "out of scope",
	})
	suite.Require().NoError(err)

	_, err = suite.service.AttachFile(editor, request.ID, models.FileKindBucket,
		"delivery.csv", "text/csv", "", strings.NewReader("data"))
	assert.ErrorIs(suite.T(), err, models.ErrValidation)
}

func (suite *RequestServiceTestSuite) TestFileScopedToRequest() {
	owner := ownerCtx("alice@example.com")
	first := suite.createRequest(owner)
	second := suite.createRequest(owner)

	file, err := suite.service.AttachFile(owner, first.ID, models.FileKindSample,
		"trades.csv", "text/csv", "", strings.NewReader("data"))
	suite.Require().NoError(err)

	_, _, err = suite.service.OpenFile(owner, second.ID, file.ID)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func TestRequestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceTestSuite))
}
