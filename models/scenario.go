package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Scenario represents a configured reporting scenario within a domain
type Scenario struct {
	ID          int       `json:"id"`
	DomainID    int       `json:"domain_id"`
	DomainName  string    `json:"domain_name,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	DateAdded   time.Time `json:"date_added"`

	AuditFields
}

// Playboard is a saved UI configuration (filters, grid layout, actions)
// bound to a scenario. The config blob is opaque to the backend; it is
// validated only as well-formed JSON.
type Playboard struct {
	ID         int             `json:"id"`
	ScenarioID int             `json:"scenario_id"`
	Name       string          `json:"name"`
	Config     json.RawMessage `json:"config"`
	DateAdded  time.Time       `json:"date_added"`

	AuditFields
}

// ScenarioForm represents payload data for creating/updating scenarios
type ScenarioForm struct {
	DomainID    int    `json:"domain_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// Validate validates the scenario form data
func (f *ScenarioForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, "Name is required")
	}

	if f.DomainID <= 0 {
		errors = append(errors, "Domain must be selected")
	}

	return errors
}

// PlayboardForm represents payload data for creating/updating playboards
type PlayboardForm struct {
	ScenarioID int             `json:"scenario_id"`
	Name       string          `json:"name"`
	Config     json.RawMessage `json:"config"`
}

// Validate validates the playboard form data
func (f *PlayboardForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, "Name is required")
	}

	if f.ScenarioID <= 0 {
		errors = append(errors, "Scenario must be selected")
	}

	if len(f.Config) > 0 && !json.Valid(f.Config) {
		errors = append(errors, "Config must be valid JSON")
	}

	return errors
}
