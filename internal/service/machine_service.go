package service

import (
	"context"
	"fmt"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// MachineService manages machines, their client links and converters.
type MachineService struct {
	repo       *repository.MachineRepository
	clientRepo *repository.ClientRepository
	audit      *AuditService
}

// NewMachineService creates the machine service.
func NewMachineService(repo *repository.MachineRepository, clientRepo *repository.ClientRepository, audit *AuditService) *MachineService {
	return &MachineService{repo: repo, clientRepo: clientRepo, audit: audit}
}

// MachineInput carries machine create/update fields.
type MachineInput struct {
	Name    string `json:"name" binding:"required"`
	Version string `json:"version" binding:"required"`
}

// Create inserts a machine.
func (s *MachineService) Create(ctx context.Context, in MachineInput) (*entity.Machine, error) {
	machine := &entity.Machine{Name: in.Name, Version: in.Version}
	if err := s.repo.Create(ctx, machine); err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}
	return machine, nil
}

// Update replaces the editable machine fields.
func (s *MachineService) Update(ctx context.Context, id string, in MachineInput, actorID string) (*entity.Machine, error) {
	machine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *machine
	machine.Name = in.Name
	machine.Version = in.Version

	if err := s.repo.Update(ctx, machine); err != nil {
		return nil, fmt.Errorf("update machine: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, machine, actorID)
	return machine, nil
}

// Get loads one machine with links and converters.
func (s *MachineService) Get(ctx context.Context, id string) (*entity.Machine, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a machine.
func (s *MachineService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns a page of machines.
func (s *MachineService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Machine, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// AttachClient links a client to a machine.
func (s *MachineService) AttachClient(ctx context.Context, machineID, clientID, comment string) (*entity.MachineClient, error) {
	if _, err := s.repo.FindByID(ctx, machineID); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	link, err := s.repo.AttachClient(ctx, machineID, clientID, comment)
	if err != nil {
		return nil, fmt.Errorf("attach client: %w", err)
	}
	return link, nil
}

// DetachClient removes a machine-client link.
func (s *MachineService) DetachClient(ctx context.Context, machineID, clientID string) error {
	return s.repo.DetachClient(ctx, machineID, clientID)
}

// ListClients returns the client links of a machine.
func (s *MachineService) ListClients(ctx context.Context, machineID string) ([]entity.MachineClient, error) {
	if _, err := s.repo.FindByID(ctx, machineID); err != nil {
		return nil, err
	}
	return s.repo.ListClients(ctx, machineID)
}

// ConverterInput carries converter create/update fields.
type ConverterInput struct {
	Name        string `json:"name" binding:"required"`
	Serial      string `json:"serial"`
	Description string `json:"description"`
}

// AddConverter records a converter owned by a machine.
func (s *MachineService) AddConverter(ctx context.Context, machineID string, in ConverterInput) (*entity.Converter, error) {
	if _, err := s.repo.FindByID(ctx, machineID); err != nil {
		return nil, err
	}
	conv := &entity.Converter{
		MachineID:   machineID,
		Name:        in.Name,
		Serial:      in.Serial,
		Description: in.Description,
	}
	if err := s.repo.CreateConverter(ctx, conv); err != nil {
		return nil, fmt.Errorf("create converter: %w", err)
	}
	return conv, nil
}

// UpdateConverter replaces the editable converter fields.
func (s *MachineService) UpdateConverter(ctx context.Context, id string, in ConverterInput, actorID string) (*entity.Converter, error) {
	conv, err := s.repo.FindConverterByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *conv
	conv.Name = in.Name
	conv.Serial = in.Serial
	conv.Description = in.Description

	if err := s.repo.UpdateConverter(ctx, conv); err != nil {
		return nil, fmt.Errorf("update converter: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, conv, actorID)
	return conv, nil
}

// DeleteConverter removes a converter.
func (s *MachineService) DeleteConverter(ctx context.Context, id string) error {
	if _, err := s.repo.FindConverterByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteConverter(ctx, id)
}

// ListConverters returns the converters of a machine.
func (s *MachineService) ListConverters(ctx context.Context, machineID string) ([]entity.Converter, error) {
	if _, err := s.repo.FindByID(ctx, machineID); err != nil {
		return nil, err
	}
	return s.repo.ListConverters(ctx, machineID)
}
