package services

import (
	"context"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
)

// LogService exposes the activity and error logs to the admin UI
type LogService interface {
	ActivityLog(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
	ErrorLog(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
}

type logService struct {
	activityRepo repositories.ActivityRepository
}

// NewLogService creates a new log service
func NewLogService(activityRepo repositories.ActivityRepository) LogService {
	return &logService{activityRepo: activityRepo}
}

// ActivityLog retrieves recent activity entries of every level
func (s *logService) ActivityLog(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	return s.activityRepo.List(ctx, "", limit)
}

// ErrorLog retrieves recent error-level entries only
func (s *logService) ErrorLog(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	return s.activityRepo.List(ctx, models.LogLevelError, limit)
}
