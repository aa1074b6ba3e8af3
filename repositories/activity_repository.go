package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/scenario-hub/models"
)

// ActivityRepository handles activity and error log persistence
type ActivityRepository interface {
	Create(entry *models.ActivityLogEntry) error
	List(ctx context.Context, level string, limit int) ([]models.ActivityLogEntry, error)
}

type sqliteActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new activity log repository
func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &sqliteActivityRepository{db: db}
}

// Create inserts a new activity log entry
func (r *sqliteActivityRepository) Create(entry *models.ActivityLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Level == "" {
		entry.Level = models.LogLevelActivity
	}

	query := `
		INSERT INTO activity_log (timestamp, level, user_email, method, path, status_code, detail, user_agent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(
		query,
		entry.Timestamp,
		entry.Level,
		entry.UserEmail,
		entry.Method,
		entry.Path,
		entry.StatusCode,
		entry.Detail,
		entry.UserAgent,
		entry.IPAddress,
	)

	return err
}

// List retrieves log entries, newest first, optionally filtered by level
func (r *sqliteActivityRepository) List(ctx context.Context, level string, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	query := `
		SELECT id, timestamp, level, user_email, method, path, status_code, detail, user_agent, ip_address
		FROM activity_log
	`
	var args []interface{}
	if level != "" {
		query += " WHERE level = ?"
		args = append(args, level)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityLogEntry
	for rows.Next() {
		var entry models.ActivityLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.Level,
			&entry.UserEmail,
			&entry.Method,
			&entry.Path,
			&entry.StatusCode,
			&entry.Detail,
			&entry.UserAgent,
			&entry.IPAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
