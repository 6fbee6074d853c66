package service

import (
	"context"
	"fmt"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// ModuleService manages modules and their part links.
type ModuleService struct {
	repo     *repository.ModuleRepository
	partRepo *repository.PartRepository
	audit    *AuditService
}

// NewModuleService creates the module service.
func NewModuleService(repo *repository.ModuleRepository, partRepo *repository.PartRepository, audit *AuditService) *ModuleService {
	return &ModuleService{repo: repo, partRepo: partRepo, audit: audit}
}

// ModuleInput carries module create/update fields.
type ModuleInput struct {
	Decimal        string  `json:"decimal" binding:"required"`
	Name           string  `json:"name" binding:"required,max=30"`
	ManufacturerID *string `json:"manufacturer_id"`
	Version        string  `json:"version"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
}

// Create inserts a module.
func (s *ModuleService) Create(ctx context.Context, in ModuleInput, actorID string) (*entity.Module, error) {
	status := in.Status
	if status == "" {
		status = entity.ModuleStatusInProgress
	}
	var creator *string
	if actorID != "" {
		creator = &actorID
	}
	module := &entity.Module{
		Decimal:        in.Decimal,
		Name:           in.Name,
		ManufacturerID: in.ManufacturerID,
		Version:        in.Version,
		Description:    in.Description,
		Status:         status,
		CreatedBy:      creator,
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, fmt.Errorf("create module: %w", err)
	}
	return module, nil
}

// Update replaces the editable module fields.
func (s *ModuleService) Update(ctx context.Context, id string, in ModuleInput, actorID string) (*entity.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *module
	module.Decimal = in.Decimal
	module.Name = in.Name
	module.ManufacturerID = in.ManufacturerID
	module.Version = in.Version
	module.Description = in.Description
	if in.Status != "" {
		module.Status = in.Status
	}
	if actorID != "" {
		module.UpdatedBy = &actorID
	}

	if err := s.repo.Update(ctx, module); err != nil {
		return nil, fmt.Errorf("update module: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, module, actorID)
	return module, nil
}

// Get loads one module with manufacturer and part links.
func (s *ModuleService) Get(ctx context.Context, id string) (*entity.Module, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a module.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns a page of modules.
func (s *ModuleService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Module, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// ModulePartInput carries module-part link fields.
type ModulePartInput struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// AddPart links a part to a module, replacing the quantity of an
// existing link.
func (s *ModuleService) AddPart(ctx context.Context, moduleID string, in ModulePartInput) (*entity.ModulePart, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, ErrQuantity
	}
	if _, err := s.repo.FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	if _, err := s.partRepo.FindByID(ctx, in.PartID); err != nil {
		return nil, err
	}

	link := &entity.ModulePart{
		ModuleID: moduleID,
		PartID:   in.PartID,
		Quantity: in.Quantity,
	}
	if err := s.repo.UpsertModulePart(ctx, link); err != nil {
		return nil, fmt.Errorf("link part: %w", err)
	}
	return link, nil
}

// UpdatePart changes a module-part link quantity.
func (s *ModuleService) UpdatePart(ctx context.Context, moduleID, partID string, quantity int) (*entity.ModulePart, error) {
	if quantity <= 0 {
		return nil, ErrQuantity
	}
	link, err := s.repo.FindModulePart(ctx, moduleID, partID)
	if err != nil {
		return nil, err
	}
	link.Quantity = quantity
	if err := s.repo.UpdateModulePart(ctx, link); err != nil {
		return nil, fmt.Errorf("update part link: %w", err)
	}
	return link, nil
}

// RemovePart unlinks a part from a module.
func (s *ModuleService) RemovePart(ctx context.Context, moduleID, partID string) error {
	link, err := s.repo.FindModulePart(ctx, moduleID, partID)
	if err != nil {
		return err
	}
	return s.repo.DeleteModulePart(ctx, link.ID)
}

// ListParts returns the part links of a module.
func (s *ModuleService) ListParts(ctx context.Context, moduleID string) ([]entity.ModulePart, error) {
	if _, err := s.repo.FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.repo.ListModuleParts(ctx, moduleID)
}
