package service

import (
	"context"
	"fmt"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// ClientService manages clients and manufacturers.
type ClientService struct {
	repo  *repository.ClientRepository
	audit *AuditService
}

// NewClientService creates the client service.
func NewClientService(repo *repository.ClientRepository, audit *AuditService) *ClientService {
	return &ClientService{repo: repo, audit: audit}
}

// ClientInput carries client create/update fields.
type ClientInput struct {
	Name    string `json:"name" binding:"required"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// CreateClient inserts a client.
func (s *ClientService) CreateClient(ctx context.Context, in ClientInput) (*entity.Client, error) {
	client := &entity.Client{
		Name:    in.Name,
		Country: in.Country,
		Phone:   in.Phone,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// UpdateClient replaces the editable client fields.
func (s *ClientService) UpdateClient(ctx context.Context, id string, in ClientInput, actorID string) (*entity.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *client
	client.Name = in.Name
	client.Country = in.Country
	client.Phone = in.Phone

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, client, actorID)
	return client, nil
}

// GetClient loads one client.
func (s *ClientService) GetClient(ctx context.Context, id string) (*entity.Client, error) {
	return s.repo.FindByID(ctx, id)
}

// DeleteClient removes a client.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListClients returns a page of clients.
func (s *ClientService) ListClients(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Client, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// ManufacturerInput carries manufacturer create/update fields.
type ManufacturerInput struct {
	Name     string `json:"name" binding:"required"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Language string `json:"language"`
}

// CreateManufacturer inserts a manufacturer.
func (s *ClientService) CreateManufacturer(ctx context.Context, in ManufacturerInput) (*entity.Manufacturer, error) {
	m := &entity.Manufacturer{
		Name:     in.Name,
		Country:  in.Country,
		Phone:    in.Phone,
		Language: in.Language,
	}
	if err := s.repo.CreateManufacturer(ctx, m); err != nil {
		return nil, fmt.Errorf("create manufacturer: %w", err)
	}
	return m, nil
}

// UpdateManufacturer replaces the editable manufacturer fields.
func (s *ClientService) UpdateManufacturer(ctx context.Context, id string, in ManufacturerInput, actorID string) (*entity.Manufacturer, error) {
	m, err := s.repo.FindManufacturerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *m
	m.Name = in.Name
	m.Country = in.Country
	m.Phone = in.Phone
	m.Language = in.Language

	if err := s.repo.UpdateManufacturer(ctx, m); err != nil {
		return nil, fmt.Errorf("update manufacturer: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, m, actorID)
	return m, nil
}

// GetManufacturer loads one manufacturer.
func (s *ClientService) GetManufacturer(ctx context.Context, id string) (*entity.Manufacturer, error) {
	return s.repo.FindManufacturerByID(ctx, id)
}

// DeleteManufacturer removes a manufacturer.
func (s *ClientService) DeleteManufacturer(ctx context.Context, id string) error {
	if _, err := s.repo.FindManufacturerByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteManufacturer(ctx, id)
}

// ListManufacturers returns a page of manufacturers.
func (s *ClientService) ListManufacturers(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Manufacturer, int64, error) {
	return s.repo.ListManufacturers(ctx, page, pageSize, filters)
}
