package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/scenario-hub/models"
)

// RequestFilter narrows request listings. Zero values mean "any".
type RequestFilter struct {
	Status    models.Status
	Requester string
	DomainID  int
}

// RequestRepository interface defines scenario request database operations.
// Comments and workflow events are insert-only; no update or delete exists
// for them by design of the audit trail.
type RequestRepository interface {
	List(ctx context.Context, filter RequestFilter) ([]models.ScenarioRequest, error)
	GetByID(ctx context.Context, id string) (*models.ScenarioRequest, error)
	Create(ctx context.Context, request *models.ScenarioRequest) error
	UpdateFields(ctx context.Context, request *models.ScenarioRequest) error
	Transition(ctx context.Context, id string, from, to models.Status, event *models.WorkflowEvent, comment *models.Comment) error
	AddComment(ctx context.Context, comment *models.Comment) error
	AddFile(ctx context.Context, file *models.FileAttachment) error
	GetFileByID(ctx context.Context, fileID string) (*models.FileAttachment, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}

// requestRepository implements RequestRepository interface
type requestRepository struct {
	db *sql.DB
}

// NewRequestRepository creates a new scenario request repository
func NewRequestRepository(db *sql.DB) RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `r.id, r.requester, r.domain_id, d.name, r.name, r.description, r.status,
	       r.created_at, r.updated_at`

func scanRequest(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ScenarioRequest, error) {
	var request models.ScenarioRequest
	err := scanner.Scan(
		&request.ID,
		&request.Requester,
		&request.DomainID,
		&request.DomainName,
		&request.Name,
		&request.Description,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List retrieves scenario requests matching the filter, newest first.
// Child records are not loaded.
func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]models.ScenarioRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM scenario_requests r
		JOIN domains d ON d.id = r.domain_id
		WHERE 1=1
	`
	var args []interface{}

	if filter.Status != "" {
		query += " AND r.status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Requester != "" {
		query += " AND r.requester = ?"
		args = append(args, filter.Requester)
	}
	if filter.DomainID > 0 {
		query += " AND r.domain_id = ?"
		args = append(args, filter.DomainID)
	}

	query += " ORDER BY r.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario requests: %w", err)
	}
	defer rows.Close()

	var requests []models.ScenarioRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario request: %w", err)
		}
		requests = append(requests, *request)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scenario requests: %w", err)
	}

	return requests, nil
}

// GetByID retrieves a scenario request with comments, events and files loaded
func (r *requestRepository) GetByID(ctx context.Context, id string) (*models.ScenarioRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM scenario_requests r
		JOIN domains d ON d.id = r.domain_id
		WHERE r.id = ?
	`

	request, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scenario request %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario request: %w", err)
	}

	if request.Comments, err = r.loadComments(ctx, id); err != nil {
		return nil, err
	}
	if request.Events, err = r.loadEvents(ctx, id); err != nil {
		return nil, err
	}

	files, err := r.loadFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.Kind == models.FileKindBucket {
			request.BucketFiles = append(request.BucketFiles, file)
		} else {
			request.SampleFiles = append(request.SampleFiles, file)
		}
	}

	return request, nil
}

func (r *requestRepository) loadComments(ctx context.Context, requestID string) ([]models.Comment, error) {
	query := `
		SELECT id, request_id, author, body, order_index, created_at
		FROM request_comments
		WHERE request_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID,
			&comment.RequestID,
			&comment.Author,
			&comment.Text,
			&comment.OrderIndex,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *requestRepository) loadEvents(ctx context.Context, requestID string) ([]models.WorkflowEvent, error) {
	query := `
		SELECT id, request_id, from_status, to_status, actor, comment, created_at
		FROM workflow_events
		WHERE request_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow events: %w", err)
	}
	defer rows.Close()

	var events []models.WorkflowEvent
	for rows.Next() {
		var event models.WorkflowEvent
		err := rows.Scan(
			&event.ID,
			&event.RequestID,
			&event.FromStatus,
			&event.ToStatus,
			&event.Actor,
			&event.Comment,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

const fileColumns = `id, request_id, kind, name, content_type, storage_path,
	       version, uploaded_by, comment, created_at`

func scanFile(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.FileAttachment, error) {
	var file models.FileAttachment
	err := scanner.Scan(
		&file.ID,
		&file.RequestID,
		&file.Kind,
		&file.Name,
		&file.ContentType,
		&file.StoragePath,
		&file.Version,
		&file.UploadedBy,
		&file.Comment,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *requestRepository) loadFiles(ctx context.Context, requestID string) ([]models.FileAttachment, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM request_files
		WHERE request_id = ?
		ORDER BY kind, name, version ASC
	`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query request files: %w", err)
	}
	defer rows.Close()

	var files []models.FileAttachment
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request file: %w", err)
		}
		files = append(files, *file)
	}
	return files, rows.Err()
}

// Create inserts a new scenario request
func (r *requestRepository) Create(ctx context.Context, request *models.ScenarioRequest) error {
	query := `
		INSERT INTO scenario_requests (id, requester, domain_id, name, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = request.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.Requester,
		request.DomainID,
		request.Name,
		request.Description,
		string(request.Status),
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scenario request: %w", err)
	}

	return nil
}

// UpdateFields updates the editable fields of a request without touching
// status or any child records
func (r *requestRepository) UpdateFields(ctx context.Context, request *models.ScenarioRequest) error {
	query := `
		UPDATE scenario_requests
		SET name = ?, description = ?, domain_id = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		request.Name,
		request.Description,
		request.DomainID,
		now,
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scenario request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("scenario request %s: %w", request.ID, models.ErrNotFound)
	}

	request.UpdatedAt = now
	return nil
}

// Transition applies a status change and its audit records in a single
// transaction. The status row update is guarded by the expected from-status
// so a concurrent transition loses cleanly instead of double-applying.
func (r *requestRepository) Transition(ctx context.Context, id string, from, to models.Status, event *models.WorkflowEvent, comment *models.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE scenario_requests SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(to), now, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM scenario_requests WHERE id = ?", id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check request existence: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("scenario request %s: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("scenario request %s is no longer in status %s: %w", id, from, models.ErrValidation)
	}

	event.CreatedAt = now
	_, err = tx.ExecContext(ctx, `
		INSERT INTO workflow_events (id, request_id, from_status, to_status, actor, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.RequestID, string(event.FromStatus), string(event.ToStatus), event.Actor, event.Comment, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append workflow event: %w", err)
	}

	if comment != nil {
		if err := insertComment(ctx, tx, comment, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// insertComment appends a comment inside an open transaction, assigning the
// next order index
func insertComment(ctx context.Context, tx *sql.Tx, comment *models.Comment, now time.Time) error {
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(order_index), 0) + 1 FROM request_comments WHERE request_id = ?",
		comment.RequestID,
	).Scan(&comment.OrderIndex)
	if err != nil {
		return fmt.Errorf("failed to compute comment order index: %w", err)
	}

	comment.CreatedAt = now
	_, err = tx.ExecContext(ctx, `
		INSERT INTO request_comments (id, request_id, author, body, order_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, comment.ID, comment.RequestID, comment.Author, comment.Text, comment.OrderIndex, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append comment: %w", err)
	}

	return nil
}

// AddComment appends a comment to a request
func (r *requestRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM scenario_requests WHERE id = ?", comment.RequestID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check request existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("scenario request %s: %w", comment.RequestID, models.ErrNotFound)
	}

	if err := insertComment(ctx, tx, comment, time.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

// AddFile records a file attachment, assigning the next version number for
// its (kind, logical name) pair. Prior versions are never touched.
func (r *requestRepository) AddFile(ctx context.Context, file *models.FileAttachment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1 FROM request_files
		WHERE request_id = ? AND kind = ? AND name = ?
	`, file.RequestID, string(file.Kind), file.Name).Scan(&file.Version)
	if err != nil {
		return fmt.Errorf("failed to compute file version: %w", err)
	}

	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO request_files (id, request_id, kind, name, content_type, storage_path, version, uploaded_by, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, file.ID, file.RequestID, string(file.Kind), file.Name, file.ContentType,
		file.StoragePath, file.Version, file.UploadedBy, file.Comment, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record request file: %w", err)
	}

	return tx.Commit()
}

// GetFileByID retrieves a single file attachment record
func (r *requestRepository) GetFileByID(ctx context.Context, fileID string) (*models.FileAttachment, error) {
	query := `SELECT ` + fileColumns + ` FROM request_files WHERE id = ?`

	file, err := scanFile(r.db.QueryRowContext(ctx, query, fileID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("file %s: %w", fileID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request file: %w", err)
	}

	return file, nil
}

// CountByStatus returns the number of requests per status. Statuses with no
// requests are simply absent from the map.
func (r *requestRepository) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM scenario_requests GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[models.Status(status)] = count
	}
	return counts, rows.Err()
}
