package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a scenario request
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusInReview   Status = "in_review"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusTesting    Status = "testing"
	StatusDeployed   Status = "deployed"
	StatusActive     Status = "active"
	StatusRejected   Status = "rejected"
	StatusInactive   Status = "inactive"
)

// AllStatuses returns every status in lifecycle order, branch states last.
// Served as a lookup so the frontend never hardcodes the enum.
func AllStatuses() []Status {
	return []Status{
		StatusSubmitted,
		StatusInReview,
		StatusAccepted,
		StatusInProgress,
		StatusTesting,
		StatusDeployed,
		StatusActive,
		StatusRejected,
		StatusInactive,
	}
}

// statusOrder ranks the forward lifecycle. Rejected and inactive are branch
// states and sit outside the forward order.
var statusOrder = map[Status]int{
	StatusSubmitted:  0,
	StatusInReview:   1,
	StatusAccepted:   2,
	StatusInProgress: 3,
	StatusTesting:    4,
	StatusDeployed:   5,
	StatusActive:     6,
}

// Valid reports whether s is a member of the status enum
func (s Status) Valid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// AtLeast reports whether s has reached other in the forward lifecycle.
// Branch states (rejected, inactive) never satisfy it.
func (s Status) AtLeast(other Status) bool {
	rank, ok := statusOrder[s]
	if !ok {
		return false
	}
	otherRank, ok := statusOrder[other]
	if !ok {
		return false
	}
	return rank >= otherRank
}

// OwnerEditable reports whether the requester may still edit the request
func (s Status) OwnerEditable() bool {
	return s == StatusSubmitted || s == StatusInProgress
}

// StatsBucket groups statuses for dashboard aggregation
type StatsBucket string

const (
	BucketSubmitted  StatsBucket = "submitted"
	BucketInProgress StatsBucket = "in_progress"
	BucketCompleted  StatsBucket = "completed"
	BucketRejected   StatsBucket = "rejected"
)

// Bucket maps a status onto its dashboard bucket
func (s Status) Bucket() StatsBucket {
	switch s {
	case StatusSubmitted:
		return BucketSubmitted
	case StatusInReview, StatusAccepted, StatusInProgress, StatusTesting:
		return BucketInProgress
	case StatusDeployed, StatusActive:
		return BucketCompleted
	default:
		return BucketRejected
	}
}

// FileKind distinguishes request input files from delivered data snapshots
type FileKind string

const (
	FileKindSample FileKind = "sample"
	FileKindBucket FileKind = "bucket"
)

// Valid reports whether k is a known file kind
func (k FileKind) Valid() bool {
	return k == FileKindSample || k == FileKindBucket
}

// ScenarioRequest represents a user-submitted ticket asking for a new
// reporting scenario to be built
type ScenarioRequest struct {
	ID          string    `json:"id"`
	Requester   string    `json:"requester"`
	DomainID    int       `json:"domain_id"`
	DomainName  string    `json:"domain_name,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated on detail reads
	Comments    []Comment        `json:"comments,omitempty"`
	Events      []WorkflowEvent  `json:"events,omitempty"`
	SampleFiles []FileAttachment `json:"sample_files,omitempty"`
	BucketFiles []FileAttachment `json:"bucket_files,omitempty"`
}

// WorkflowEvent records a single status transition. Append-only, never
// mutated after creation.
type WorkflowEvent struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Actor      string    `json:"actor"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comment is a user-visible annotation on a request. Append-only.
type Comment struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// FileAttachment is a versioned file artifact attached to a request. A new
// upload with the same logical name increments the version counter rather
// than overwriting.
type FileAttachment struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	Kind        FileKind  `json:"kind"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	StoragePath string    `json:"-"`
	Version     int       `json:"version"`
	UploadedBy  string    `json:"uploaded_by"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScenarioRequestForm represents payload data for creating or editing a request
type ScenarioRequestForm struct {
	DomainID    int    `json:"domain_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates the scenario request form data
func (f *ScenarioRequestForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, "Name is required")
	}

	if len(f.Name) > 200 {
		errors = append(errors, "Name must be less than 200 characters")
	}

	if f.DomainID <= 0 {
		errors = append(errors, "Domain must be selected")
	}

	return errors
}

// TransitionForm represents payload data for a status change
type TransitionForm struct {
	Status  Status `json:"status"`
	Comment string `json:"comment"`
}

// Validate validates the transition form data
func (f *TransitionForm) Validate() []string {
	var errors []string

	if f.Status == "" {
		errors = append(errors, "Target status is required")
	} else if !f.Status.Valid() {
		errors = append(errors, "Target status "+string(f.Status)+" is not a known status")
	}

	return errors
}

// CommentForm represents payload data for appending a comment
type CommentForm struct {
	Text string `json:"text"`
}

// Validate validates the comment form data
func (f *CommentForm) Validate() []string {
	var errors []string

	if strings.TrimSpace(f.Text) == "" {
		errors = append(errors, "Comment text is required")
	}

	return errors
}

// RequestStats holds request counts by status bucket for the dashboard
type RequestStats struct {
	Submitted  int `json:"submitted"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Rejected   int `json:"rejected"`
	Total      int `json:"total"`
}
