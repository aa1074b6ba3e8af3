package models

import "time"

// Log levels for activity log entries
const (
	LogLevelActivity = "activity"
	LogLevelError    = "error"
)

// ActivityLogEntry represents a single recorded HTTP mutation or error
type ActivityLogEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Level      string    `json:"level"`
	UserEmail  string    `json:"user_email"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	Detail     string    `json:"detail,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
}
