package models

import (
	"strings"
	"time"
)

// Built-in role names. Roles are stored in the database so admins can add
// descriptions, but authorization checks key off these names.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// User represents an account in the admin application
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	Roles        []string  `json:"roles"`
	Groups       []string  `json:"groups"`
	DateAdded    time.Time `json:"date_added"`

	AuditFields
}

// HasRole reports whether the user holds the named role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsEditor reports whether the user may act on requests they do not own.
// Admins are editors everywhere.
func (u *User) IsEditor() bool {
	return u.HasRole(RoleEditor) || u.HasRole(RoleAdmin)
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Role represents a named role with a human description
type Role struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Group represents a named collection of users used to scope domains
type Group struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members,omitempty"`
}

// UserForm represents payload data for creating/updating users
type UserForm struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password,omitempty"`
	Active   bool     `json:"active"`
	Roles    []string `json:"roles"`
}

// Validate validates the user form data
func (f *UserForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Email) == "" {
		errors = append(errors, "Email is required")
	} else if !isValidEmail(f.Email) {
		errors = append(errors, "Email format is invalid")
	}

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, "Name is required")
	}

	if len(f.Name) > 100 {
		errors = append(errors, "Name must be less than 100 characters")
	}

	if f.Password != "" && len(f.Password) < 8 {
		errors = append(errors, "Password must be at least 8 characters")
	}

	return errors
}

// GroupForm represents payload data for creating/updating groups
type GroupForm struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// Validate validates the group form data
func (f *GroupForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, "Name is required")
	}

	return errors
}

// LoginForm represents payload data for local password login
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login form data
func (f *LoginForm) Validate() []string {
	var errors []string

	if f.Email == "" {
		errors = append(errors, "Email is required")
	}

	if f.Password == "" {
		errors = append(errors, "Password is required")
	}

	return errors
}
