package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/security"
)

// UserService interface defines user, role and group management business logic
type UserService interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, form *models.UserForm) (*models.User, error)
	UpdateUser(ctx context.Context, id int, form *models.UserForm) (*models.User, error)
	DeactivateUser(ctx context.Context, id int) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	EnsureUser(ctx context.Context, email, name string) (*models.User, error)

	ListRoles(ctx context.Context) ([]models.Role, error)

	ListGroups(ctx context.Context) ([]models.Group, error)
	GetGroupByID(ctx context.Context, id int) (*models.Group, error)
	CreateGroup(ctx context.Context, form *models.GroupForm) (*models.Group, error)
	UpdateGroup(ctx context.Context, id int, form *models.GroupForm) (*models.Group, error)
	DeleteGroup(ctx context.Context, id int) error
}

// userService implements UserService interface
type userService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetAllUsers retrieves all users
func (s *userService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid user ID %d: %w", id, models.ErrValidation)
	}
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// CreateUser creates a new user with validation
func (s *userService) CreateUser(ctx context.Context, form *models.UserForm) (*models.User, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(form.Email))
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("user with email %s already exists: %w", email, models.ErrValidation)
	}

	user := &models.User{
		Email:  email,
		Name:   strings.TrimSpace(form.Name),
		Active: form.Active,
		Roles:  form.Roles,
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{models.RoleUser}
	}

	if form.Password != "" {
		hash, err := security.HashPassword(form.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUser updates an existing user. An empty password leaves the stored
// hash untouched.
func (s *userService) UpdateUser(ctx context.Context, id int, form *models.UserForm) (*models.User, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = strings.ToLower(strings.TrimSpace(form.Email))
	user.Name = strings.TrimSpace(form.Name)
	user.Active = form.Active

	if form.Password != "" {
		hash, err := security.HashPassword(form.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if form.Roles != nil {
		if err := s.userRepo.SetRoles(ctx, user.ID, form.Roles); err != nil {
			return nil, fmt.Errorf("failed to set user roles: %w", err)
		}
		user.Roles = form.Roles
	}

	return user, nil
}

// DeactivateUser deactivates a user (accounts are never hard-deleted)
func (s *userService) DeactivateUser(ctx context.Context, id int) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !user.Active {
		return fmt.Errorf("user is already inactive: %w", models.ErrValidation)
	}

	user.Active = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// Authenticate verifies a local email/password login
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", models.ErrForbidden)
		}
		return nil, err
	}

	if !user.Active {
		return nil, fmt.Errorf("account is inactive: %w", models.ErrForbidden)
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrForbidden)
	}

	return user, nil
}

// EnsureUser returns the user for an OIDC identity, creating an active
// account with the default role on first login
func (s *userService) EnsureUser(ctx context.Context, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("identity has no email claim: %w", models.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:  email,
		Name:   name,
		Active: true,
		Roles:  []string{models.RoleUser},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision user %s: %w", email, err)
	}

	return user, nil
}

// ListRoles retrieves all roles
func (s *userService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.userRepo.ListRoles(ctx)
}

// ListGroups retrieves all groups
func (s *userService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.userRepo.ListGroups(ctx)
}

// GetGroupByID retrieves a group by ID
func (s *userService) GetGroupByID(ctx context.Context, id int) (*models.Group, error) {
	return s.userRepo.GetGroupByID(ctx, id)
}

// CreateGroup creates a new group with validation
func (s *userService) CreateGroup(ctx context.Context, form *models.GroupForm) (*models.Group, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	group := &models.Group{
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Members:     form.Members,
	}
	if err := s.userRepo.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// UpdateGroup updates an existing group and its membership
func (s *userService) UpdateGroup(ctx context.Context, id int, form *models.GroupForm) (*models.Group, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	group, err := s.userRepo.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Name = strings.TrimSpace(form.Name)
	group.Description = form.Description
	if err := s.userRepo.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	if form.Members != nil {
		if err := s.userRepo.SetGroupMembers(ctx, group.ID, form.Members); err != nil {
			return nil, fmt.Errorf("failed to set group members: %w", err)
		}
		group.Members = form.Members
	}

	return group, nil
}

// DeleteGroup deletes a group
func (s *userService) DeleteGroup(ctx context.Context, id int) error {
	return s.userRepo.DeleteGroup(ctx, id)
}
