package models

import (
	"strings"
	"time"
)

// Domain represents a named business area used to scope data and permissions
type Domain struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerGroup  string    `json:"owner_group,omitempty"`
	Active      bool      `json:"active"`
	DateAdded   time.Time `json:"date_added"`

	AuditFields
}

// DomainForm represents payload data for creating/updating domains
type DomainForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerGroup  string `json:"owner_group"`
	Active      bool   `json:"active"`
}

// Validate validates the domain form data
func (f *DomainForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, "Name is required")
	}

	if len(f.Name) > 100 {
		errors = append(errors, "Name must be less than 100 characters")
	}

	return errors
}
