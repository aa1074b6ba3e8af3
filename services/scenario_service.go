package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
)

// ScenarioService interface defines scenario and playboard management logic
type ScenarioService interface {
	GetAllScenarios(ctx context.Context) ([]models.Scenario, error)
	GetScenariosByDomain(ctx context.Context, domainID int) ([]models.Scenario, error)
	GetScenarioByID(ctx context.Context, id int) (*models.Scenario, error)
	CreateScenario(ctx context.Context, form *models.ScenarioForm) (*models.Scenario, error)
	UpdateScenario(ctx context.Context, id int, form *models.ScenarioForm) (*models.Scenario, error)

	GetPlayboards(ctx context.Context, scenarioID int) ([]models.Playboard, error)
	GetPlayboardByID(ctx context.Context, id int) (*models.Playboard, error)
	CreatePlayboard(ctx context.Context, form *models.PlayboardForm) (*models.Playboard, error)
	UpdatePlayboard(ctx context.Context, id int, form *models.PlayboardForm) (*models.Playboard, error)
	DeletePlayboard(ctx context.Context, id int) error
}

// scenarioService implements ScenarioService interface
type scenarioService struct {
	scenarioRepo repositories.ScenarioRepository
	domainRepo   repositories.DomainRepository
}

// NewScenarioService creates a new scenario service
func NewScenarioService(scenarioRepo repositories.ScenarioRepository, domainRepo repositories.DomainRepository) ScenarioService {
	return &scenarioService{
		scenarioRepo: scenarioRepo,
		domainRepo:   domainRepo,
	}
}

// GetAllScenarios retrieves all scenarios
func (s *scenarioService) GetAllScenarios(ctx context.Context) ([]models.Scenario, error) {
	return s.scenarioRepo.GetAll(ctx)
}

// GetScenariosByDomain retrieves scenarios belonging to a domain
func (s *scenarioService) GetScenariosByDomain(ctx context.Context, domainID int) ([]models.Scenario, error) {
	if domainID <= 0 {
		return nil, fmt.Errorf("invalid domain ID %d: %w", domainID, models.ErrValidation)
	}
	return s.scenarioRepo.GetByDomain(ctx, domainID)
}

// GetScenarioByID retrieves a scenario by ID
func (s *scenarioService) GetScenarioByID(ctx context.Context, id int) (*models.Scenario, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid scenario ID %d: %w", id, models.ErrValidation)
	}
	return s.scenarioRepo.GetByID(ctx, id)
}

// CreateScenario creates a new scenario after checking its domain exists
func (s *scenarioService) CreateScenario(ctx context.Context, form *models.ScenarioForm) (*models.Scenario, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	if _, err := s.domainRepo.GetByID(ctx, form.DomainID); err != nil {
		return nil, err
	}

	scenario := &models.Scenario{
		DomainID:    form.DomainID,
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Active:      form.Active,
	}
	if err := s.scenarioRepo.Create(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to create scenario: %w", err)
	}

	return scenario, nil
}

// UpdateScenario updates an existing scenario
func (s *scenarioService) UpdateScenario(ctx context.Context, id int, form *models.ScenarioForm) (*models.Scenario, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	scenario, err := s.scenarioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if form.DomainID != scenario.DomainID {
		if _, err := s.domainRepo.GetByID(ctx, form.DomainID); err != nil {
			return nil, err
		}
	}

	scenario.DomainID = form.DomainID
	scenario.Name = strings.TrimSpace(form.Name)
	scenario.Description = form.Description
	scenario.Active = form.Active

	if err := s.scenarioRepo.Update(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to update scenario: %w", err)
	}

	return scenario, nil
}

// GetPlayboards retrieves the playboards bound to a scenario
func (s *scenarioService) GetPlayboards(ctx context.Context, scenarioID int) ([]models.Playboard, error) {
	if scenarioID <= 0 {
		return nil, fmt.Errorf("invalid scenario ID %d: %w", scenarioID, models.ErrValidation)
	}
	return s.scenarioRepo.GetPlayboards(ctx, scenarioID)
}

// GetPlayboardByID retrieves a playboard by ID
func (s *scenarioService) GetPlayboardByID(ctx context.Context, id int) (*models.Playboard, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid playboard ID %d: %w", id, models.ErrValidation)
	}
	return s.scenarioRepo.GetPlayboardByID(ctx, id)
}

// CreatePlayboard creates a new playboard after checking its scenario exists
func (s *scenarioService) CreatePlayboard(ctx context.Context, form *models.PlayboardForm) (*models.Playboard, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	if _, err := s.scenarioRepo.GetByID(ctx, form.ScenarioID); err != nil {
		return nil, err
	}

	board := &models.Playboard{
		ScenarioID: form.ScenarioID,
		Name:       strings.TrimSpace(form.Name),
		Config:     form.Config,
	}
	if err := s.scenarioRepo.CreatePlayboard(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to create playboard: %w", err)
	}

	return board, nil
}

// UpdatePlayboard updates an existing playboard
func (s *scenarioService) UpdatePlayboard(ctx context.Context, id int, form *models.PlayboardForm) (*models.Playboard, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	board, err := s.scenarioRepo.GetPlayboardByID(ctx, id)
	if err != nil {
		return nil, err
	}

	board.Name = strings.TrimSpace(form.Name)
	if len(form.Config) > 0 {
		board.Config = form.Config
	}

	if err := s.scenarioRepo.UpdatePlayboard(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to update playboard: %w", err)
	}

	return board, nil
}

// DeletePlayboard deletes a playboard
func (s *scenarioService) DeletePlayboard(ctx context.Context, id int) error {
	return s.scenarioRepo.DeletePlayboard(ctx, id)
}
