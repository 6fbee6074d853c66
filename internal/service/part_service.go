package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// PartService manages parts.
type PartService struct {
	repo  *repository.PartRepository
	audit *AuditService
}

// NewPartService creates the part service.
func NewPartService(repo *repository.PartRepository, audit *AuditService) *PartService {
	return &PartService{repo: repo, audit: audit}
}

// PartInput carries part create/update fields.
type PartInput struct {
	Decimal         string     `json:"decimal"`
	Name            string     `json:"name" binding:"required"`
	ManufacturerID  *string    `json:"manufacturer_id"`
	Description     string     `json:"description"`
	Material        string     `json:"material"`
	ManufactureDate *time.Time `json:"manufacture_date"`
}

// Create inserts a part.
func (s *PartService) Create(ctx context.Context, in PartInput, actorID string) (*entity.Part, error) {
	var creator *string
	if actorID != "" {
		creator = &actorID
	}
	part := &entity.Part{
		Decimal:         in.Decimal,
		Name:            in.Name,
		ManufacturerID:  in.ManufacturerID,
		Description:     in.Description,
		Material:        in.Material,
		ManufactureDate: in.ManufactureDate,
		CreatedBy:       creator,
	}
	if err := s.repo.Create(ctx, part); err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	return part, nil
}

// Update replaces the editable part fields.
func (s *PartService) Update(ctx context.Context, id string, in PartInput, actorID string) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *part
	part.Decimal = in.Decimal
	part.Name = in.Name
	part.ManufacturerID = in.ManufacturerID
	part.Description = in.Description
	part.Material = in.Material
	part.ManufactureDate = in.ManufactureDate
	if actorID != "" {
		part.UpdatedBy = &actorID
	}

	if err := s.repo.Update(ctx, part); err != nil {
		return nil, fmt.Errorf("update part: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, part, actorID)
	return part, nil
}

// Get loads one part.
func (s *PartService) Get(ctx context.Context, id string) (*entity.Part, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a part.
func (s *PartService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns a page of parts.
func (s *PartService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Part, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}
