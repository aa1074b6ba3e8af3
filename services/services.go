package services

import (
	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/cache"
	"github.com/opsdeck/scenario-hub/events"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/storage"
)

// Services holds all service instances
type Services struct {
	User         UserService
	Domain       DomainService
	Scenario     ScenarioService
	Request      RequestService
	Stats        StatsService
	Feedback     FeedbackService
	Distribution DistributionService
	Log          LogService
}

// Deps are the external adapters services depend on. Publisher must not be
// nil (use events.NewNopPublisher); StatsCache may be nil when redis is not
// configured.
type Deps struct {
	Files      *storage.FileStore
	Publisher  events.Publisher
	StatsCache *cache.StatsCache
	Logger     *zap.Logger
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewNopPublisher()
	}

	return &Services{
		User:         NewUserService(repos.User),
		Domain:       NewDomainService(repos.Domain),
		Scenario:     NewScenarioService(repos.Scenario, repos.Domain),
		Request:      NewRequestService(repos.Request, repos.Domain, deps.Files, deps.Publisher, deps.Logger.Named("requests")),
		Stats:        NewStatsService(repos.Request, deps.StatsCache, deps.Logger.Named("stats")),
		Feedback:     NewFeedbackService(repos.Feedback),
		Distribution: NewDistributionService(repos.Distribution),
		Log:          NewLogService(repos.Activity),
	}
}
