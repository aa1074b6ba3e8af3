package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/scenario-hub/models"
)

// FeedbackRepository interface defines feedback database operations
type FeedbackRepository interface {
	GetAll(ctx context.Context) ([]models.Feedback, error)
	Create(ctx context.Context, feedback *models.Feedback) error
}

// feedbackRepository implements FeedbackRepository interface
type feedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// GetAll retrieves all feedback entries, newest first
func (r *feedbackRepository) GetAll(ctx context.Context) ([]models.Feedback, error) {
	query := `
		SELECT id, author, category, message, page, created_at
		FROM feedback
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var entries []models.Feedback
	for rows.Next() {
		var entry models.Feedback
		err := rows.Scan(
			&entry.ID,
			&entry.Author,
			&entry.Category,
			&entry.Message,
			&entry.Page,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Create inserts a new feedback entry
func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO feedback (author, category, message, page, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, feedback.Author, feedback.Category, feedback.Message, feedback.Page, feedback.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}
	feedback.ID = int(id)

	return nil
}
