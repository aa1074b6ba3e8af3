package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
)

// DistributionService interface defines distribution list business logic
type DistributionService interface {
	GetAllLists(ctx context.Context) ([]models.DistributionList, error)
	GetListByID(ctx context.Context, id int) (*models.DistributionList, error)
	CreateList(ctx context.Context, form *models.DistributionListForm) (*models.DistributionList, error)
	UpdateList(ctx context.Context, id int, form *models.DistributionListForm) (*models.DistributionList, error)
	DeleteList(ctx context.Context, id int) error
}

// distributionService implements DistributionService interface
type distributionService struct {
	distributionRepo repositories.DistributionRepository
}

// NewDistributionService creates a new distribution list service
func NewDistributionService(distributionRepo repositories.DistributionRepository) DistributionService {
	return &distributionService{distributionRepo: distributionRepo}
}

// GetAllLists retrieves all distribution lists
func (s *distributionService) GetAllLists(ctx context.Context) ([]models.DistributionList, error) {
	return s.distributionRepo.GetAll(ctx)
}

// GetListByID retrieves a distribution list by ID
func (s *distributionService) GetListByID(ctx context.Context, id int) (*models.DistributionList, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid list ID %d: %w", id, models.ErrValidation)
	}
	return s.distributionRepo.GetByID(ctx, id)
}

// normalizeMembers lowercases and deduplicates member addresses
func normalizeMembers(members []string) []string {
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members))
	for _, member := range members {
		address := strings.ToLower(strings.TrimSpace(member))
		if address == "" || seen[address] {
			continue
		}
		seen[address] = true
		out = append(out, address)
	}
	return out
}

// CreateList creates a new distribution list with validation
func (s *distributionService) CreateList(ctx context.Context, form *models.DistributionListForm) (*models.DistributionList, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	list := &models.DistributionList{
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Members:     normalizeMembers(form.Members),
	}
	if err := s.distributionRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create distribution list: %w", err)
	}

	return list, nil
}

// UpdateList updates an existing distribution list and its membership
func (s *distributionService) UpdateList(ctx context.Context, id int, form *models.DistributionListForm) (*models.DistributionList, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, ", "), models.ErrValidation)
	}

	list, err := s.distributionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	list.Name = strings.TrimSpace(form.Name)
	list.Description = form.Description
	list.Members = normalizeMembers(form.Members)

	if err := s.distributionRepo.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to update distribution list: %w", err)
	}

	return list, nil
}

// DeleteList deletes a distribution list
func (s *distributionService) DeleteList(ctx context.Context, id int) error {
	return s.distributionRepo.Delete(ctx, id)
}
