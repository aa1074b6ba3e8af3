package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/scenario-hub/models"
)

func TestRequestStatsBucketsEveryStatus(t *testing.T) {
	repo := newFakeRequestRepo()
	seed := map[string]models.Status{
		"r1": models.StatusSubmitted,
		"r2": models.StatusSubmitted,
		"r3": models.StatusInReview,
		"r4": models.StatusAccepted,
		"r5": models.StatusTesting,
		"r6": models.StatusDeployed,
		"r7": models.StatusActive,
		"r8": models.StatusRejected,
		"r9": models.StatusInactive,
	}
	for id, status := range seed {
		repo.requests[id] = &models.ScenarioRequest{ID: id, Status: status}
	}

	service := NewStatsService(repo, nil, nil)

	stats, err := service.RequestStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Submitted)
	assert.Equal(t, 3, stats.InProgress)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, 9, stats.Total)
}

func TestRequestStatsEmpty(t *testing.T) {
	service := NewStatsService(newFakeRequestRepo(), nil, nil)

	stats, err := service.RequestStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Submitted)
	assert.Equal(t, 0, stats.InProgress)
	assert.Equal(t, 0, stats.Completed)
	assert.Equal(t, 0, stats.Rejected)
	assert.Equal(t, 0, stats.Total)
}
