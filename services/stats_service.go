package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/cache"
	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
)

// StatsService interface defines dashboard aggregation logic
type StatsService interface {
	RequestStats(ctx context.Context) (*models.RequestStats, error)
}

// statsService implements StatsService interface
type statsService struct {
	requestRepo repositories.RequestRepository
	statsCache  *cache.StatsCache
	logger      *zap.Logger
}

// NewStatsService creates a new stats service. The cache may be nil when
// redis is not configured; aggregates are then computed on every call.
func NewStatsService(requestRepo repositories.RequestRepository, statsCache *cache.StatsCache, logger *zap.Logger) StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &statsService{
		requestRepo: requestRepo,
		statsCache:  statsCache,
		logger:      logger,
	}
}

// RequestStats returns request counts per dashboard bucket. Every bucket is
// present in the result even when its count is zero. Cache failures are
// logged and the database is used as the source of truth.
func (s *statsService) RequestStats(ctx context.Context) (*models.RequestStats, error) {
	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	counts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.RequestStats{}
	for status, count := range counts {
		switch status.Bucket() {
		case models.BucketSubmitted:
			stats.Submitted += count
		case models.BucketInProgress:
			stats.InProgress += count
		case models.BucketCompleted:
			stats.Completed += count
		case models.BucketRejected:
			stats.Rejected += count
		}
		stats.Total += count
	}

	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, stats); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return stats, nil
}
