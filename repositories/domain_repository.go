package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/userctx"
)

// DomainRepository interface defines domain database operations
type DomainRepository interface {
	GetAll(ctx context.Context) ([]models.Domain, error)
	GetActive(ctx context.Context) ([]models.Domain, error)
	GetByID(ctx context.Context, id int) (*models.Domain, error)
	Create(ctx context.Context, domain *models.Domain) error
	Update(ctx context.Context, domain *models.Domain) error
}

// domainRepository implements DomainRepository interface
type domainRepository struct {
	db *sql.DB
}

// NewDomainRepository creates a new domain repository
func NewDomainRepository(db *sql.DB) DomainRepository {
	return &domainRepository{db: db}
}

const domainColumns = `id, name, description, owner_group, active, date_added,
	       created_by, created_at, modified_by, modified_at`

func (r *domainRepository) queryDomains(ctx context.Context, query string, args ...interface{}) ([]models.Domain, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	var domains []models.Domain
	for rows.Next() {
		var domain models.Domain
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&domain.ID,
			&domain.Name,
			&domain.Description,
			&domain.OwnerGroup,
			&domain.Active,
			&domain.DateAdded,
			&domain.CreatedBy,
			&domain.CreatedAt,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}

		if modifiedBy.Valid {
			domain.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			domain.ModifiedAt = &modifiedAt.Time
		}

		domains = append(domains, domain)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating domains: %w", err)
	}

	return domains, nil
}

// GetAll retrieves all domains
func (r *domainRepository) GetAll(ctx context.Context) ([]models.Domain, error) {
	return r.queryDomains(ctx, `SELECT `+domainColumns+` FROM domains ORDER BY name ASC`)
}

// GetActive retrieves only active domains
func (r *domainRepository) GetActive(ctx context.Context) ([]models.Domain, error) {
	return r.queryDomains(ctx, `SELECT `+domainColumns+` FROM domains WHERE active = 1 ORDER BY name ASC`)
}

// GetByID retrieves a domain by ID
func (r *domainRepository) GetByID(ctx context.Context, id int) (*models.Domain, error) {
	domains, err := r.queryDomains(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("domain with ID %d: %w", id, models.ErrNotFound)
	}
	return &domains[0], nil
}

// Create creates a new domain
func (r *domainRepository) Create(ctx context.Context, domain *models.Domain) error {
	query := `
		INSERT INTO domains (name, description, owner_group, active, date_added, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if domain.DateAdded.IsZero() {
		domain.DateAdded = time.Now()
	}

	actor := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, query,
		domain.Name,
		domain.Description,
		domain.OwnerGroup,
		domain.Active,
		domain.DateAdded,
		actor,
	)
	if err != nil {
		return fmt.Errorf("failed to create domain: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	domain.ID = int(id)
	domain.CreatedBy = actor
	return nil
}

// Update updates an existing domain
func (r *domainRepository) Update(ctx context.Context, domain *models.Domain) error {
	query := `
		UPDATE domains
		SET name = ?, description = ?, owner_group = ?, active = ?,
		    modified_by = ?, modified_at = ?
		WHERE id = ?
	`

	actor := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, query,
		domain.Name,
		domain.Description,
		domain.OwnerGroup,
		domain.Active,
		actor,
		now,
		domain.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update domain: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("domain with ID %d: %w", domain.ID, models.ErrNotFound)
	}

	domain.ModifiedBy = actor
	domain.ModifiedAt = &now
	return nil
}
