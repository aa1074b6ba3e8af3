package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	User         UserRepository
	Domain       DomainRepository
	Scenario     ScenarioRepository
	Request      RequestRepository
	Feedback     FeedbackRepository
	Distribution DistributionRepository
	Activity     ActivityRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Domain:       NewDomainRepository(db),
		Scenario:     NewScenarioRepository(db),
		Request:      NewRequestRepository(db),
		Feedback:     NewFeedbackRepository(db),
		Distribution: NewDistributionRepository(db),
		Activity:     NewActivityRepository(db),
	}
}
