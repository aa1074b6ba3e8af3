package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
)

// DomainService interface defines domain management business logic
type DomainService interface {
	GetAllDomains(ctx context.Context) ([]models.Domain, error)
	GetActiveDomains(ctx context.Context) ([]models.Domain, error)
	GetDomainByID(ctx context.Context, id int) (*models.Domain, error)
	CreateDomain(ctx context.Context, form *models.DomainForm) (*models.Domain, error)
	UpdateDomain(ctx context.Context, id int, form *models.DomainForm) (*models.Domain, error)
}

// domainService implements DomainService interface
type domainService struct {
	domainRepo repositories.DomainRepository
}

// NewDomainService creates a new domain service
func NewDomainService(domainRepo repositories.DomainRepository) DomainService {
	return &domainService{domainRepo: domainRepo}
}

// GetAllDomains retrieves all domains
func (s *domainService) GetAllDomains(ctx context.Context) ([]models.Domain, error) {
	return s.domainRepo.GetAll(ctx)
}

// GetActiveDomains retrieves only active domains
func (s *domainService) GetActiveDomains(ctx context.Context) ([]models.Domain, error) {
	return s.domainRepo.GetActive(ctx)
}

// GetDomainByID retrieves a domain by ID
func (s *domainService) GetDomainByID(ctx context.Context, id int) (*models.Domain, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid domain ID %d: %w", id, models.ErrValidation)
	}
	return s.domainRepo.GetByID(ctx, id)
}

// CreateDomain creates a new domain with validation
func (s *domainService) CreateDomain(ctx context.Context, form *models.DomainForm) (*models.Domain, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	domain := &models.Domain{
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		OwnerGroup:  strings.TrimSpace(form.OwnerGroup),
		Active:      form.Active,
	}
	if err := s.domainRepo.Create(ctx, domain); err != nil {
		return nil, fmt.Errorf("failed to create domain: %w", err)
	}

	return domain, nil
}

// UpdateDomain updates an existing domain
func (s *domainService) UpdateDomain(ctx context.Context, id int, form *models.DomainForm) (*models.Domain, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	domain, err := s.domainRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	domain.Name = strings.TrimSpace(form.Name)
	domain.Description = form.Description
	domain.OwnerGroup = strings.TrimSpace(form.OwnerGroup)
	domain.Active = form.Active

	if err := s.domainRepo.Update(ctx, domain); err != nil {
		return nil, fmt.Errorf("failed to update domain: %w", err)
	}

	return domain, nil
}
