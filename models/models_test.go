package models

import (
	"testing"
)

// Test the status lifecycle enum
func TestStatusValid(t *testing.T) {
	for _, status := range AllStatuses() {
		if !status.Valid() {
			t.Errorf("Expected %s to be a valid status", status)
		}
	}

	invalid := []Status{"", "done", "SUBMITTED", "in-review"}
	for _, status := range invalid {
		if status.Valid() {
			t.Errorf("Expected %s to be an invalid status", status)
		}
	}
}

func TestStatusAtLeast(t *testing.T) {
	if !StatusAccepted.AtLeast(StatusAccepted) {
		t.Error("Expected accepted to be at least accepted")
	}
	if !StatusDeployed.AtLeast(StatusAccepted) {
		t.Error("Expected deployed to be at least accepted")
	}
	if StatusSubmitted.AtLeast(StatusAccepted) {
		t.Error("Expected submitted not to be at least accepted")
	}

	// Branch states never satisfy the forward lifecycle
	if StatusRejected.AtLeast(StatusSubmitted) {
		t.Error("Expected rejected not to satisfy AtLeast")
	}
	if StatusInactive.AtLeast(StatusAccepted) {
		t.Error("Expected inactive not to satisfy AtLeast")
	}
	if StatusActive.AtLeast(StatusRejected) {
		t.Error("Expected AtLeast against a branch state to be false")
	}
}

func TestStatusOwnerEditable(t *testing.T) {
	editable := []Status{StatusSubmitted, StatusInProgress}
	for _, status := range editable {
		if !status.OwnerEditable() {
			t.Errorf("Expected %s to be owner editable", status)
		}
	}

	locked := []Status{StatusInReview, StatusAccepted, StatusTesting, StatusDeployed, StatusActive, StatusRejected, StatusInactive}
	for _, status := range locked {
		if status.OwnerEditable() {
			t.Errorf("Expected %s not to be owner editable", status)
		}
	}
}

func TestStatusBucket(t *testing.T) {
	cases := map[Status]StatsBucket{
		StatusSubmitted:  BucketSubmitted,
		StatusInReview:   BucketInProgress,
		StatusAccepted:   BucketInProgress,
		StatusInProgress: BucketInProgress,
		StatusTesting:    BucketInProgress,
		StatusDeployed:   BucketCompleted,
		StatusActive:     BucketCompleted,
		StatusRejected:   BucketRejected,
		StatusInactive:   BucketRejected,
	}
	for status, want := range cases {
		if got := status.Bucket(); got != want {
			t.Errorf("Expected %s to map to bucket %s, got %s", status, want, got)
		}
	}
}

func TestFileKindValid(t *testing.T) {
	if !FileKindSample.Valid() || !FileKindBucket.Valid() {
		t.Error("Expected sample and bucket to be valid file kinds")
	}
	if FileKind("archive").Valid() {
		t.Error("Expected unknown kind to be invalid")
	}
}

// Test ScenarioRequestForm validation
func TestScenarioRequestFormValidation(t *testing.T) {
	validForm := ScenarioRequestForm{
		DomainID: 1,
		Name:     "Late settlement detection",
	}
	if errors := validForm.Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	invalidForm := ScenarioRequestForm{
		DomainID: 0,
		Name:     "   ",
	}
	if errors := invalidForm.Validate(); len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors)
	}
}

// Test TransitionForm validation
func TestTransitionFormValidation(t *testing.T) {
	validForm := TransitionForm{Status: StatusAccepted, Comment: "approved"}
	if errors := validForm.Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	if errors := (&TransitionForm{}).Validate(); len(errors) != 1 {
		t.Errorf("Expected 1 error for empty status, got: %v", errors)
	}

	unknown := TransitionForm{Status: "done"}
	if errors := unknown.Validate(); len(errors) != 1 {
		t.Errorf("Expected 1 error for unknown status, got: %v", errors)
	}
}

// Test CommentForm validation
func TestCommentFormValidation(t *testing.T) {
	validForm := CommentForm{Text: "looks good"}
	if errors := validForm.Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	emptyForm := CommentForm{Text: "   "}
	if errors := emptyForm.Validate(); len(errors) != 1 {
		t.Errorf("Expected 1 error for blank comment, got: %v", errors)
	}
}

// Test UserForm validation
func TestUserFormValidation(t *testing.T) {
	validForm := UserForm{
		Email:  "jane@example.com",
		Name:   "Jane Doe",
		Active: true,
	}
	if errors := validForm.Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	invalidForm := UserForm{
		Email: "not-an-email",
		Name:  "",
	}
	if errors := invalidForm.Validate(); len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors)
	}
}

// Test FeedbackForm validation
func TestFeedbackFormValidation(t *testing.T) {
	validForm := FeedbackForm{Category: "bug", Message: "export button broken"}
	if errors := validForm.Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	invalidForm := FeedbackForm{Category: "rant", Message: ""}
	if errors := invalidForm.Validate(); len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors)
	}
}

// Test DistributionListForm validation
func TestDistributionListFormValidation(t *testing.T) {
	validForm := DistributionListForm{
		Name:    "ops-alerts",
		Members: []string{"ops@example.com", "lead@example.com"},
	}
	if errors := validForm.Validate(); len(errors) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errors)
	}

	invalidForm := DistributionListForm{
		Name:    "",
		Members: []string{"not-an-address"},
	}
	if errors := invalidForm.Validate(); len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors)
	}
}
