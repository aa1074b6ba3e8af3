package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/userctx"
)

// FeedbackService interface defines feedback business logic
type FeedbackService interface {
	GetAllFeedback(ctx context.Context) ([]models.Feedback, error)
	SubmitFeedback(ctx context.Context, form *models.FeedbackForm) (*models.Feedback, error)
}

// feedbackService implements FeedbackService interface
type feedbackService struct {
	feedbackRepo repositories.FeedbackRepository
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(feedbackRepo repositories.FeedbackRepository) FeedbackService {
	return &feedbackService{feedbackRepo: feedbackRepo}
}

// GetAllFeedback retrieves all feedback entries
func (s *feedbackService) GetAllFeedback(ctx context.Context) ([]models.Feedback, error) {
	return s.feedbackRepo.GetAll(ctx)
}

// SubmitFeedback records a new feedback entry attributed to the context user
func (s *feedbackService) SubmitFeedback(ctx context.Context, form *models.FeedbackForm) (*models.Feedback, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	feedback := &models.Feedback{
		Author:   userctx.GetUserEmail(ctx),
		Category: form.Category,
		Message:  strings.TrimSpace(form.Message),
		Page:     strings.TrimSpace(form.Page),
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to submit feedback: %w", err)
	}

	return feedback, nil
}
