package models

import (
	"strings"
	"time"
)

// Feedback represents a piece of user feedback submitted from the frontend
type Feedback struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Page      string    `json:"page,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackCategories returns the accepted feedback categories, served as a
// lookup for the frontend select
func FeedbackCategories() []string {
	return []string{"bug", "feature", "question", "other"}
}

// FeedbackForm represents payload data for submitting feedback
type FeedbackForm struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Page     string `json:"page"`
}

// Validate validates the feedback form data
func (f *FeedbackForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Message) == "" {
		errors = append(errors, "Message is required")
	}

	valid := false
	for _, c := range FeedbackCategories() {
		if f.Category == c {
			valid = true
			break
		}
	}
	if !valid {
		errors = append(errors, "Category must be one of: "+strings.Join(FeedbackCategories(), ", "))
	}

	return errors
}
