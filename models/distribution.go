package models

import (
	"strings"
	"time"
)

// DistributionList represents a named email distribution list
type DistributionList struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []string  `json:"members"`
	DateAdded   time.Time `json:"date_added"`

	AuditFields
}

// DistributionListForm represents payload data for creating/updating lists
type DistributionListForm struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// Validate validates the distribution list form data
func (f *DistributionListForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, "Name is required")
	}

	for _, member := range f.Members {
		if !isValidEmail(member) {
			errors = append(errors, "Member address "+member+" is invalid")
		}
	}

	return errors
}
