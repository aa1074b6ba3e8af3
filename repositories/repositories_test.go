package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/opsdeck/scenario-hub/database"
	"github.com/opsdeck/scenario-hub/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	// Create a temporary database for testing
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"

	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})

	// Initialize test database using the actual migration system
	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	return database.GetDB()
}

func createTestDomain(t *testing.T, db *sql.DB) *models.Domain {
	repo := NewDomainRepository(db)
	domain := &models.Domain{
		Name:        "settlements",
		Description: "Settlement monitoring",
		OwnerGroup:  "ops",
		Active:      true,
	}
	if err := repo.Create(context.Background(), domain); err != nil {
		t.Fatalf("Failed to create test domain: %v", err)
	}
	return domain
}

func TestDomainRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDomainRepository(db)
	ctx := context.Background()

	domain := createTestDomain(t, db)
	if domain.ID == 0 {
		t.Error("Expected domain ID to be set after creation")
	}

	retrieved, err := repo.GetByID(ctx, domain.ID)
	if err != nil {
		t.Fatalf("Failed to get domain by ID: %v", err)
	}
	if retrieved.Name != domain.Name {
		t.Errorf("Expected name %s, got %s", domain.Name, retrieved.Name)
	}

	retrieved.Active = false
	if err := repo.Update(ctx, retrieved); err != nil {
		t.Fatalf("Failed to update domain: %v", err)
	}

	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("Failed to get active domains: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected 0 active domains, got %d", len(active))
	}

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing domain, got %v", err)
	}
}

func TestScenarioRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScenarioRepository(db)
	ctx := context.Background()
	domain := createTestDomain(t, db)

	scenario := &models.Scenario{
		DomainID:    domain.ID,
		Name:        "late-settlement",
		Description: "Detect late settlements",
		Active:      true,
	}
	if err := repo.Create(ctx, scenario); err != nil {
		t.Fatalf("Failed to create scenario: %v", err)
	}

	byDomain, err := repo.GetByDomain(ctx, domain.ID)
	if err != nil {
		t.Fatalf("Failed to get scenarios by domain: %v", err)
	}
	if len(byDomain) != 1 {
		t.Fatalf("Expected 1 scenario, got %d", len(byDomain))
	}
	if byDomain[0].DomainName != domain.Name {
		t.Errorf("Expected domain name %s, got %s", domain.Name, byDomain[0].DomainName)
	}

	board := &models.Playboard{
		ScenarioID: scenario.ID,
		Name:       "default view",
		Config:     []byte(`{"columns": ["trade_id"]}`),
	}
	if err := repo.CreatePlayboard(ctx, board); err != nil {
		t.Fatalf("Failed to create playboard: %v", err)
	}

	boards, err := repo.GetPlayboards(ctx, scenario.ID)
	if err != nil {
		t.Fatalf("Failed to get playboards: %v", err)
	}
	if len(boards) != 1 {
		t.Fatalf("Expected 1 playboard, got %d", len(boards))
	}

	if err := repo.DeletePlayboard(ctx, board.ID); err != nil {
		t.Fatalf("Failed to delete playboard: %v", err)
	}
	if _, err := repo.GetPlayboardByID(ctx, board.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for deleted playboard, got %v", err)
	}
}

func TestUserRepositoryRolesAndGroups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Email:  "jane@example.com",
		Name:   "Jane Doe",
		Active: true,
		Roles:  []string{models.RoleUser},
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.ID == 0 {
		t.Error("Expected user ID to be set after creation")
	}

	retrieved, err := repo.GetByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("Failed to get user by email: %v", err)
	}
	if len(retrieved.Roles) != 1 || retrieved.Roles[0] != models.RoleUser {
		t.Errorf("Expected roles [user], got %v", retrieved.Roles)
	}

	// Promote to editor
	if err := repo.SetRoles(ctx, user.ID, []string{models.RoleUser, models.RoleEditor}); err != nil {
		t.Fatalf("Failed to set roles: %v", err)
	}
	retrieved, err = repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to get user by ID: %v", err)
	}
	if len(retrieved.Roles) != 2 {
		t.Errorf("Expected 2 roles, got %v", retrieved.Roles)
	}

	// Seeded roles from migrations
	roles, err := repo.ListRoles(ctx)
	if err != nil {
		t.Fatalf("Failed to list roles: %v", err)
	}
	if len(roles) != 3 {
		t.Errorf("Expected 3 seeded roles, got %d", len(roles))
	}

	group := &models.Group{
		Name:        "ops",
		Description: "Operations team",
		Members:     []string{"jane@example.com"},
	}
	if err := repo.CreateGroup(ctx, group); err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}

	retrieved, err = repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to get user by ID: %v", err)
	}
	if len(retrieved.Groups) != 1 || retrieved.Groups[0] != "ops" {
		t.Errorf("Expected groups [ops], got %v", retrieved.Groups)
	}
}

func createTestRequest(t *testing.T, repo RequestRepository, domainID int, requester string) *models.ScenarioRequest {
	request := &models.ScenarioRequest{
		ID:          uuid.NewString(),
		Requester:   requester,
		DomainID:    domainID,
		Name:        "Late settlement detection",
		Description: "Flag trades settling after the deadline",
		Status:      models.StatusSubmitted,
	}
	if err := repo.Create(context.Background(), request); err != nil {
		t.Fatalf("Failed to create scenario request: %v", err)
	}
	return request
}

func TestRequestRepositoryTransition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	domain := createTestDomain(t, db)
	request := createTestRequest(t, repo, domain.ID, "alice@example.com")

	event := &models.WorkflowEvent{
		ID:         uuid.NewString(),
		RequestID:  request.ID,
		FromStatus: models.StatusSubmitted,
		ToStatus:   models.StatusInReview,
		Actor:      "bob@example.com",
		Comment:    "picking this up",
	}
	comment := &models.Comment{
		ID:        uuid.NewString(),
		RequestID: request.ID,
		Author:    "bob@example.com",
		Text:      "picking this up",
	}

	err := repo.Transition(ctx, request.ID, models.StatusSubmitted, models.StatusInReview, event, comment)
	if err != nil {
		t.Fatalf("Failed to transition request: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("Failed to get request: %v", err)
	}
	if retrieved.Status != models.StatusInReview {
		t.Errorf("Expected status in_review, got %s", retrieved.Status)
	}
	if len(retrieved.Events) != 1 {
		t.Fatalf("Expected 1 workflow event, got %d", len(retrieved.Events))
	}
	if retrieved.Events[0].FromStatus != models.StatusSubmitted || retrieved.Events[0].ToStatus != models.StatusInReview {
		t.Errorf("Unexpected event statuses: %+v", retrieved.Events[0])
	}
	if len(retrieved.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(retrieved.Comments))
	}
	if retrieved.Comments[0].OrderIndex != 1 {
		t.Errorf("Expected first comment order index 1, got %d", retrieved.Comments[0].OrderIndex)
	}

	// A stale transition must fail without writing anything
	staleEvent := &models.WorkflowEvent{
		ID:         uuid.NewString(),
		RequestID:  request.ID,
		FromStatus: models.StatusSubmitted,
		ToStatus:   models.StatusAccepted,
		Actor:      "carol@example.com",
	}
	err = repo.Transition(ctx, request.ID, models.StatusSubmitted, models.StatusAccepted, staleEvent, nil)
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation for stale transition, got %v", err)
	}

	retrieved, err = repo.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("Failed to get request: %v", err)
	}
	if len(retrieved.Events) != 1 {
		t.Errorf("Expected stale transition to write no event, got %d events", len(retrieved.Events))
	}
	if retrieved.Status != models.StatusInReview {
		t.Errorf("Expected status to stay in_review, got %s", retrieved.Status)
	}

	// Transition on a missing request
	err = repo.Transition(ctx, "missing-id", models.StatusSubmitted, models.StatusInReview, staleEvent, nil)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing request, got %v", err)
	}
}

func TestRequestRepositoryCommentOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	domain := createTestDomain(t, db)
	request := createTestRequest(t, repo, domain.ID, "alice@example.com")

	for i, text := range []string{"first", "second", "third"} {
		comment := &models.Comment{
			ID:        uuid.NewString(),
			RequestID: request.ID,
			Author:    "alice@example.com",
			Text:      text,
		}
		if err := repo.AddComment(ctx, comment); err != nil {
			t.Fatalf("Failed to add comment %d: %v", i, err)
		}
		if comment.OrderIndex != i+1 {
			t.Errorf("Expected order index %d, got %d", i+1, comment.OrderIndex)
		}
	}

	retrieved, err := repo.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("Failed to get request: %v", err)
	}
	if len(retrieved.Comments) != 3 {
		t.Fatalf("Expected 3 comments, got %d", len(retrieved.Comments))
	}
	for i, comment := range retrieved.Comments {
		if comment.OrderIndex != i+1 {
			t.Errorf("Expected comment %d at order index %d, got %d", i, i+1, comment.OrderIndex)
		}
	}
}

func TestRequestRepositoryFileVersioning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	domain := createTestDomain(t, db)
	request := createTestRequest(t, repo, domain.ID, "alice@example.com")

	for i := 1; i <= 3; i++ {
		file := &models.FileAttachment{
			ID:          uuid.NewString(),
			RequestID:   request.ID,
			Kind:        models.FileKindSample,
			Name:        "trades.csv",
			ContentType: "text/csv",
			StoragePath: request.ID + "/sample/trades.csv." + uuid.NewString(),
			UploadedBy:  "alice@example.com",
		}
		if err := repo.AddFile(ctx, file); err != nil {
			t.Fatalf("Failed to add file version %d: %v", i, err)
		}
		if file.Version != i {
			t.Errorf("Expected version %d, got %d", i, file.Version)
		}
	}

	// A different logical name starts its own version sequence
	other := &models.FileAttachment{
		ID:          uuid.NewString(),
		RequestID:   request.ID,
		Kind:        models.FileKindSample,
		Name:        "positions.csv",
		ContentType: "text/csv",
		StoragePath: request.ID + "/sample/positions.csv." + uuid.NewString(),
		UploadedBy:  "alice@example.com",
	}
	if err := repo.AddFile(ctx, other); err != nil {
		t.Fatalf("Failed to add second file: %v", err)
	}
	if other.Version != 1 {
		t.Errorf("Expected version 1 for new logical name, got %d", other.Version)
	}

	retrieved, err := repo.GetByID(ctx, request.ID)
	if err != nil {
		t.Fatalf("Failed to get request: %v", err)
	}
	if len(retrieved.SampleFiles) != 4 {
		t.Errorf("Expected 4 sample files, got %d", len(retrieved.SampleFiles))
	}
}

func TestRequestRepositoryCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	domain := createTestDomain(t, db)

	statuses := []models.Status{
		models.StatusSubmitted,
		models.StatusSubmitted,
		models.StatusInReview,
		models.StatusRejected,
	}
	for _, status := range statuses {
		request := createTestRequest(t, repo, domain.ID, "alice@example.com")
		if status == models.StatusSubmitted {
			continue
		}
		event := &models.WorkflowEvent{
			ID:         uuid.NewString(),
			RequestID:  request.ID,
			FromStatus: models.StatusSubmitted,
			ToStatus:   status,
			Actor:      "bob@example.com",
		}
		if err := repo.Transition(ctx, request.ID, models.StatusSubmitted, status, event, nil); err != nil {
			t.Fatalf("Failed to transition request to %s: %v", status, err)
		}
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("Failed to count by status: %v", err)
	}
	if counts[models.StatusSubmitted] != 2 {
		t.Errorf("Expected 2 submitted, got %d", counts[models.StatusSubmitted])
	}
	if counts[models.StatusInReview] != 1 {
		t.Errorf("Expected 1 in_review, got %d", counts[models.StatusInReview])
	}
	if counts[models.StatusRejected] != 1 {
		t.Errorf("Expected 1 rejected, got %d", counts[models.StatusRejected])
	}
}

func TestRequestRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	domain := createTestDomain(t, db)

	createTestRequest(t, repo, domain.ID, "alice@example.com")
	createTestRequest(t, repo, domain.ID, "bob@example.com")

	all, err := repo.List(ctx, RequestFilter{})
	if err != nil {
		t.Fatalf("Failed to list requests: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 requests, got %d", len(all))
	}

	mine, err := repo.List(ctx, RequestFilter{Requester: "alice@example.com"})
	if err != nil {
		t.Fatalf("Failed to list requests by requester: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("Expected 1 request for alice, got %d", len(mine))
	}

	none, err := repo.List(ctx, RequestFilter{Status: models.StatusDeployed})
	if err != nil {
		t.Fatalf("Failed to list requests by status: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected 0 deployed requests, got %d", len(none))
	}
}

func TestDistributionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDistributionRepository(db)
	ctx := context.Background()

	list := &models.DistributionList{
		Name:        "ops-alerts",
		Description: "Operations alerting",
		Members:     []string{"a@example.com", "b@example.com"},
	}
	if err := repo.Create(ctx, list); err != nil {
		t.Fatalf("Failed to create distribution list: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, list.ID)
	if err != nil {
		t.Fatalf("Failed to get distribution list: %v", err)
	}
	if len(retrieved.Members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(retrieved.Members))
	}

	retrieved.Members = []string{"c@example.com"}
	if err := repo.Update(ctx, retrieved); err != nil {
		t.Fatalf("Failed to update distribution list: %v", err)
	}

	retrieved, err = repo.GetByID(ctx, list.ID)
	if err != nil {
		t.Fatalf("Failed to get distribution list: %v", err)
	}
	if len(retrieved.Members) != 1 || retrieved.Members[0] != "c@example.com" {
		t.Errorf("Expected members [c@example.com], got %v", retrieved.Members)
	}

	if err := repo.Delete(ctx, list.ID); err != nil {
		t.Fatalf("Failed to delete distribution list: %v", err)
	}
	if _, err := repo.GetByID(ctx, list.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestActivityRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	entries := []*models.ActivityLogEntry{
		{Level: models.LogLevelActivity, UserEmail: "alice@example.com", Method: "POST", Path: "/api/requests", StatusCode: 201},
		{Level: models.LogLevelError, UserEmail: "bob@example.com", Method: "GET", Path: "/api/requests/x", StatusCode: 500},
	}
	for _, entry := range entries {
		if err := repo.Create(entry); err != nil {
			t.Fatalf("Failed to create activity entry: %v", err)
		}
	}

	all, err := repo.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("Failed to list activity log: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(all))
	}

	errorsOnly, err := repo.List(ctx, models.LogLevelError, 0)
	if err != nil {
		t.Fatalf("Failed to list error log: %v", err)
	}
	if len(errorsOnly) != 1 {
		t.Errorf("Expected 1 error entry, got %d", len(errorsOnly))
	}
	if errorsOnly[0].StatusCode != 500 {
		t.Errorf("Expected status code 500, got %d", errorsOnly[0].StatusCode)
	}
}
