package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/userctx"
)

// ScenarioRepository interface defines scenario and playboard database operations
type ScenarioRepository interface {
	GetAll(ctx context.Context) ([]models.Scenario, error)
	GetByDomain(ctx context.Context, domainID int) ([]models.Scenario, error)
	GetByID(ctx context.Context, id int) (*models.Scenario, error)
	Create(ctx context.Context, scenario *models.Scenario) error
	Update(ctx context.Context, scenario *models.Scenario) error

	GetPlayboards(ctx context.Context, scenarioID int) ([]models.Playboard, error)
	GetPlayboardByID(ctx context.Context, id int) (*models.Playboard, error)
	CreatePlayboard(ctx context.Context, board *models.Playboard) error
	UpdatePlayboard(ctx context.Context, board *models.Playboard) error
	DeletePlayboard(ctx context.Context, id int) error
}

// scenarioRepository implements ScenarioRepository interface
type scenarioRepository struct {
	db *sql.DB
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *sql.DB) ScenarioRepository {
	return &scenarioRepository{db: db}
}

const scenarioColumns = `s.id, s.domain_id, d.name, s.name, s.description, s.active, s.date_added,
	       s.created_by, s.created_at, s.modified_by, s.modified_at`

func (r *scenarioRepository) queryScenarios(ctx context.Context, query string, args ...interface{}) ([]models.Scenario, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []models.Scenario
	for rows.Next() {
		var scenario models.Scenario
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&scenario.ID,
			&scenario.DomainID,
			&scenario.DomainName,
			&scenario.Name,
			&scenario.Description,
			&scenario.Active,
			&scenario.DateAdded,
			&scenario.CreatedBy,
			&scenario.CreatedAt,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}

		if modifiedBy.Valid {
			scenario.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			scenario.ModifiedAt = &modifiedAt.Time
		}

		scenarios = append(scenarios, scenario)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scenarios: %w", err)
	}

	return scenarios, nil
}

// GetAll retrieves all scenarios with their domain names
func (r *scenarioRepository) GetAll(ctx context.Context) ([]models.Scenario, error) {
	query := `
		SELECT ` + scenarioColumns + `
		FROM scenarios s
		JOIN domains d ON d.id = s.domain_id
		ORDER BY s.name ASC
	`
	return r.queryScenarios(ctx, query)
}

// GetByDomain retrieves scenarios belonging to a domain
func (r *scenarioRepository) GetByDomain(ctx context.Context, domainID int) ([]models.Scenario, error) {
	query := `
		SELECT ` + scenarioColumns + `
		FROM scenarios s
		JOIN domains d ON d.id = s.domain_id
		WHERE s.domain_id = ?
		ORDER BY s.name ASC
	`
	return r.queryScenarios(ctx, query, domainID)
}

// GetByID retrieves a scenario by ID
func (r *scenarioRepository) GetByID(ctx context.Context, id int) (*models.Scenario, error) {
	query := `
		SELECT ` + scenarioColumns + `
		FROM scenarios s
		JOIN domains d ON d.id = s.domain_id
		WHERE s.id = ?
	`
	scenarios, err := r.queryScenarios(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("scenario with ID %d: %w", id, models.ErrNotFound)
	}
	return &scenarios[0], nil
}

// Create creates a new scenario
func (r *scenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	query := `
		INSERT INTO scenarios (domain_id, name, description, active, date_added, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if scenario.DateAdded.IsZero() {
		scenario.DateAdded = time.Now()
	}

	actor := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, query,
		scenario.DomainID,
		scenario.Name,
		scenario.Description,
		scenario.Active,
		scenario.DateAdded,
		actor,
	)
	if err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	scenario.ID = int(id)
	scenario.CreatedBy = actor
	return nil
}

// Update updates an existing scenario
func (r *scenarioRepository) Update(ctx context.Context, scenario *models.Scenario) error {
	query := `
		UPDATE scenarios
		SET domain_id = ?, name = ?, description = ?, active = ?,
		    modified_by = ?, modified_at = ?
		WHERE id = ?
	`

	actor := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, query,
		scenario.DomainID,
		scenario.Name,
		scenario.Description,
		scenario.Active,
		actor,
		now,
		scenario.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scenario: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("scenario with ID %d: %w", scenario.ID, models.ErrNotFound)
	}

	scenario.ModifiedBy = actor
	scenario.ModifiedAt = &now
	return nil
}

const playboardColumns = `id, scenario_id, name, config, date_added,
	       created_by, created_at, modified_by, modified_at`

func (r *scenarioRepository) queryPlayboards(ctx context.Context, query string, args ...interface{}) ([]models.Playboard, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playboards: %w", err)
	}
	defer rows.Close()

	var boards []models.Playboard
	for rows.Next() {
		var board models.Playboard
		var config string
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&board.ID,
			&board.ScenarioID,
			&board.Name,
			&config,
			&board.DateAdded,
			&board.CreatedBy,
			&board.CreatedAt,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playboard: %w", err)
		}

		board.Config = []byte(config)
		if modifiedBy.Valid {
			board.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			board.ModifiedAt = &modifiedAt.Time
		}

		boards = append(boards, board)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating playboards: %w", err)
	}

	return boards, nil
}

// GetPlayboards retrieves the playboards bound to a scenario
func (r *scenarioRepository) GetPlayboards(ctx context.Context, scenarioID int) ([]models.Playboard, error) {
	query := `SELECT ` + playboardColumns + ` FROM playboards WHERE scenario_id = ? ORDER BY name ASC`
	return r.queryPlayboards(ctx, query, scenarioID)
}

// GetPlayboardByID retrieves a playboard by ID
func (r *scenarioRepository) GetPlayboardByID(ctx context.Context, id int) (*models.Playboard, error) {
	query := `SELECT ` + playboardColumns + ` FROM playboards WHERE id = ?`
	boards, err := r.queryPlayboards(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return nil, fmt.Errorf("playboard with ID %d: %w", id, models.ErrNotFound)
	}
	return &boards[0], nil
}

// CreatePlayboard creates a new playboard
func (r *scenarioRepository) CreatePlayboard(ctx context.Context, board *models.Playboard) error {
	query := `
		INSERT INTO playboards (scenario_id, name, config, date_added, created_by)
		VALUES (?, ?, ?, ?, ?)
	`

	if board.DateAdded.IsZero() {
		board.DateAdded = time.Now()
	}
	if len(board.Config) == 0 {
		board.Config = []byte("{}")
	}

	actor := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, query,
		board.ScenarioID,
		board.Name,
		string(board.Config),
		board.DateAdded,
		actor,
	)
	if err != nil {
		return fmt.Errorf("failed to create playboard: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	board.ID = int(id)
	board.CreatedBy = actor
	return nil
}

// UpdatePlayboard updates an existing playboard
func (r *scenarioRepository) UpdatePlayboard(ctx context.Context, board *models.Playboard) error {
	query := `
		UPDATE playboards
		SET name = ?, config = ?, modified_by = ?, modified_at = ?
		WHERE id = ?
	`

	actor := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, query,
		board.Name,
		string(board.Config),
		actor,
		now,
		board.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update playboard: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("playboard with ID %d: %w", board.ID, models.ErrNotFound)
	}

	board.ModifiedBy = actor
	board.ModifiedAt = &now
	return nil
}

// DeletePlayboard deletes a playboard by ID
func (r *scenarioRepository) DeletePlayboard(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM playboards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playboard: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("playboard with ID %d: %w", id, models.ErrNotFound)
	}
	return nil
}
