package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/userctx"
)

// DistributionRepository interface defines distribution list database operations
type DistributionRepository interface {
	GetAll(ctx context.Context) ([]models.DistributionList, error)
	GetByID(ctx context.Context, id int) (*models.DistributionList, error)
	Create(ctx context.Context, list *models.DistributionList) error
	Update(ctx context.Context, list *models.DistributionList) error
	Delete(ctx context.Context, id int) error
}

// distributionRepository implements DistributionRepository interface
type distributionRepository struct {
	db *sql.DB
}

// NewDistributionRepository creates a new distribution list repository
func NewDistributionRepository(db *sql.DB) DistributionRepository {
	return &distributionRepository{db: db}
}

const listColumns = `id, name, description, date_added,
	       created_by, created_at, modified_by, modified_at`

func (r *distributionRepository) queryLists(ctx context.Context, query string, args ...interface{}) ([]models.DistributionList, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution lists: %w", err)
	}
	defer rows.Close()

	var lists []models.DistributionList
	for rows.Next() {
		var list models.DistributionList
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&list.ID,
			&list.Name,
			&list.Description,
			&list.DateAdded,
			&list.CreatedBy,
			&list.CreatedAt,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution list: %w", err)
		}

		if modifiedBy.Valid {
			list.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			list.ModifiedAt = &modifiedAt.Time
		}

		lists = append(lists, list)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distribution lists: %w", err)
	}

	return lists, nil
}

func (r *distributionRepository) loadMembers(ctx context.Context, listID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT address FROM distribution_members WHERE list_id = ? ORDER BY address", listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("failed to scan list member: %w", err)
		}
		members = append(members, address)
	}
	return members, rows.Err()
}

// GetAll retrieves all distribution lists with members
func (r *distributionRepository) GetAll(ctx context.Context) ([]models.DistributionList, error) {
	lists, err := r.queryLists(ctx, `SELECT `+listColumns+` FROM distribution_lists ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}

	for i := range lists {
		if lists[i].Members, err = r.loadMembers(ctx, lists[i].ID); err != nil {
			return nil, err
		}
	}

	return lists, nil
}

// GetByID retrieves a distribution list by ID with members
func (r *distributionRepository) GetByID(ctx context.Context, id int) (*models.DistributionList, error) {
	lists, err := r.queryLists(ctx, `SELECT `+listColumns+` FROM distribution_lists WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, fmt.Errorf("distribution list with ID %d: %w", id, models.ErrNotFound)
	}

	list := lists[0]
	if list.Members, err = r.loadMembers(ctx, list.ID); err != nil {
		return nil, err
	}

	return &list, nil
}

// Create creates a new distribution list with its members
func (r *distributionRepository) Create(ctx context.Context, list *models.DistributionList) error {
	if list.DateAdded.IsZero() {
		list.DateAdded = time.Now()
	}

	actor := userctx.GetUserEmail(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO distribution_lists (name, description, date_added, created_by)
		VALUES (?, ?, ?, ?)
	`, list.Name, list.Description, list.DateAdded, actor)
	if err != nil {
		return fmt.Errorf("failed to create distribution list: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}
	list.ID = int(id)
	list.CreatedBy = actor

	if err := replaceMembers(ctx, tx, list.ID, list.Members); err != nil {
		return err
	}

	return tx.Commit()
}

// Update updates a distribution list and replaces its membership
func (r *distributionRepository) Update(ctx context.Context, list *models.DistributionList) error {
	actor := userctx.GetUserEmail(ctx)
	now := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE distribution_lists
		SET name = ?, description = ?, modified_by = ?, modified_at = ?
		WHERE id = ?
	`, list.Name, list.Description, actor, now, list.ID)
	if err != nil {
		return fmt.Errorf("failed to update distribution list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("distribution list with ID %d: %w", list.ID, models.ErrNotFound)
	}

	if err := replaceMembers(ctx, tx, list.ID, list.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	list.ModifiedBy = actor
	list.ModifiedAt = &now
	return nil
}

func replaceMembers(ctx context.Context, tx *sql.Tx, listID int, members []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM distribution_members WHERE list_id = ?", listID); err != nil {
		return fmt.Errorf("failed to clear list members: %w", err)
	}

	for _, address := range members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO distribution_members (list_id, address) VALUES (?, ?)", listID, address)
		if err != nil {
			return fmt.Errorf("failed to add list member %s: %w", address, err)
		}
	}

	return nil
}

// Delete deletes a distribution list by ID
func (r *distributionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM distribution_lists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete distribution list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("distribution list with ID %d: %w", id, models.ErrNotFound)
	}
	return nil
}
