package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/userctx"
)

// UserRepository interface defines user, role and group database operations
type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetRoles(ctx context.Context, userID int, roles []string) error
	Count(ctx context.Context) (int, error)

	ListRoles(ctx context.Context) ([]models.Role, error)

	ListGroups(ctx context.Context) ([]models.Group, error)
	GetGroupByID(ctx context.Context, id int) (*models.Group, error)
	CreateGroup(ctx context.Context, group *models.Group) error
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id int) error
	SetGroupMembers(ctx context.Context, groupID int, emails []string) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, password_hash, active, date_added,
	       created_by, created_at, modified_by, modified_at`

func scanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	var user models.User
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Active,
		&user.DateAdded,
		&user.CreatedBy,
		&user.CreatedAt,
		&modifiedBy,
		&modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if modifiedBy.Valid {
		user.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		user.ModifiedAt = &modifiedAt.Time
	}

	return &user, nil
}

// GetAll retrieves all users with their roles and groups
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	for i := range users {
		if err := r.loadMemberships(ctx, &users[i]); err != nil {
			return nil, err
		}
	}

	return users, nil
}

// GetByID retrieves a user by ID with roles and groups loaded
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user with ID %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := r.loadMemberships(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a user by email with roles and groups loaded
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := r.loadMemberships(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// loadMemberships populates the role and group name lists of a user
func (r *userRepository) loadMemberships(ctx context.Context, user *models.User) error {
	roleQuery := `
		SELECT r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name
	`
	roles, err := r.queryStrings(ctx, roleQuery, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load roles for user %d: %w", user.ID, err)
	}
	user.Roles = roles

	groupQuery := `
		SELECT g.name FROM user_groups g
		JOIN user_group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.name
	`
	groups, err := r.queryStrings(ctx, groupQuery, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load groups for user %d: %w", user.ID, err)
	}
	user.Groups = groups

	return nil
}

func (r *userRepository) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, active, date_added, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if user.DateAdded.IsZero() {
		user.DateAdded = time.Now()
	}

	actor := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Active,
		user.DateAdded,
		actor,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	user.ID = int(id)
	user.CreatedBy = actor

	if len(user.Roles) > 0 {
		return r.SetRoles(ctx, user.ID, user.Roles)
	}
	return nil
}

// Update updates an existing user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = ?, name = ?, password_hash = ?, active = ?,
		    modified_by = ?, modified_at = ?
		WHERE id = ?
	`

	actor := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Active,
		actor,
		now,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", user.ID, models.ErrNotFound)
	}

	user.ModifiedBy = actor
	user.ModifiedAt = &now
	return nil
}

// SetRoles replaces the role set of a user
func (r *userRepository) SetRoles(ctx context.Context, userID int, roles []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear user roles: %w", err)
	}

	for _, role := range roles {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT ?, id FROM roles WHERE name = ?
		`, userID, role)
		if err != nil {
			return fmt.Errorf("failed to assign role %s: %w", role, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("role %s: %w", role, models.ErrNotFound)
		}
	}

	return tx.Commit()
}

// Count returns the total number of users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ListRoles retrieves all roles
func (r *userRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description FROM roles ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListGroups retrieves all groups with member emails
func (r *userRepository) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description FROM user_groups ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.Description); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		members, err := r.groupMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}

	return groups, nil
}

// GetGroupByID retrieves a group by ID with member emails
func (r *userRepository) GetGroupByID(ctx context.Context, id int) (*models.Group, error) {
	var group models.Group
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description FROM user_groups WHERE id = ?", id,
	).Scan(&group.ID, &group.Name, &group.Description)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group with ID %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := r.groupMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return &group, nil
}

func (r *userRepository) groupMembers(ctx context.Context, groupID int) ([]string, error) {
	query := `
		SELECT u.email FROM users u
		JOIN user_group_members m ON m.user_id = u.id
		WHERE m.group_id = ?
		ORDER BY u.email
	`
	members, err := r.queryStrings(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}
	return members, nil
}

// CreateGroup creates a new group
func (r *userRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO user_groups (name, description) VALUES (?, ?)",
		group.Name, group.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}
	group.ID = int(id)

	if len(group.Members) > 0 {
		return r.SetGroupMembers(ctx, group.ID, group.Members)
	}
	return nil
}

// UpdateGroup updates name and description of a group
func (r *userRepository) UpdateGroup(ctx context.Context, group *models.Group) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE user_groups SET name = ?, description = ? WHERE id = ?",
		group.Name, group.Description, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("group with ID %d: %w", group.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteGroup deletes a group by ID
func (r *userRepository) DeleteGroup(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM user_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("group with ID %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// SetGroupMembers replaces the membership of a group, resolving emails to
// user IDs. Unknown emails are rejected.
func (r *userRepository) SetGroupMembers(ctx context.Context, groupID int, emails []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_group_members WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}

	for _, email := range emails {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO user_group_members (group_id, user_id)
			SELECT ?, id FROM users WHERE email = ?
		`, groupID, email)
		if err != nil {
			return fmt.Errorf("failed to add member %s: %w", email, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("user %s: %w", email, models.ErrNotFound)
		}
	}

	return tx.Commit()
}
