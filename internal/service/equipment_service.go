package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// ErrEquipmentType is returned for unknown equipment_type values.
var ErrEquipmentType = errors.New("equipment_type must be kalmar32 or phasar32")

var nonDigitRe = regexp.MustCompile(`[^0-9]`)

// NormalizeSerial strips everything but digits from a serial number.
// Upserts match on the normalized form.
func NormalizeSerial(serial string) string {
	return nonDigitRe.ReplaceAllString(serial, "")
}

// EquipmentService manages the Kalmar32 and Phasar32 digital twins.
type EquipmentService struct {
	repo  *repository.EquipmentRepository
	audit *AuditService
}

// NewEquipmentService creates the equipment service.
func NewEquipmentService(repo *repository.EquipmentRepository, audit *AuditService) *EquipmentService {
	return &EquipmentService{repo: repo, audit: audit}
}

// UpsertKalmar validates the unit and creates it, or updates the row
// that already carries the same serial.
func (s *EquipmentService) UpsertKalmar(ctx context.Context, unit *entity.Kalmar32, actorID string) (*entity.Kalmar32, bool, error) {
	unit.SerialNumber = NormalizeSerial(unit.SerialNumber)
	if err := unit.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindKalmarBySerial(ctx, unit.SerialNumber)
	if errors.Is(err, repository.ErrNotFound) {
		if err := s.repo.CreateKalmar(ctx, unit); err != nil {
			return nil, false, fmt.Errorf("create kalmar unit: %w", err)
		}
		return unit, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	before := *existing
	unit.ID = existing.ID
	unit.CreatedAt = existing.CreatedAt
	if unit.LicenseID == nil {
		unit.LicenseID = existing.LicenseID
	}
	if err := s.repo.UpdateKalmar(ctx, unit); err != nil {
		return nil, false, fmt.Errorf("update kalmar unit: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, unit, actorID)
	return unit, false, nil
}

// UpsertPhasar validates the unit and creates or updates it by serial.
func (s *EquipmentService) UpsertPhasar(ctx context.Context, unit *entity.Phasar32, actorID string) (*entity.Phasar32, bool, error) {
	unit.SerialNumber = NormalizeSerial(unit.SerialNumber)
	if err := unit.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindPhasarBySerial(ctx, unit.SerialNumber)
	if errors.Is(err, repository.ErrNotFound) {
		if err := s.repo.CreatePhasar(ctx, unit); err != nil {
			return nil, false, fmt.Errorf("create phasar unit: %w", err)
		}
		return unit, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	before := *existing
	unit.ID = existing.ID
	unit.CreatedAt = existing.CreatedAt
	if unit.LicenseID == nil {
		unit.LicenseID = existing.LicenseID
	}
	if err := s.repo.UpdatePhasar(ctx, unit); err != nil {
		return nil, false, fmt.Errorf("update phasar unit: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, unit, actorID)
	return unit, false, nil
}

// GetKalmar loads one Kalmar32 unit by id.
func (s *EquipmentService) GetKalmar(ctx context.Context, id string) (*entity.Kalmar32, error) {
	return s.repo.FindKalmarByID(ctx, id)
}

// GetKalmarBySerial loads one Kalmar32 unit by normalized serial.
func (s *EquipmentService) GetKalmarBySerial(ctx context.Context, serial string) (*entity.Kalmar32, error) {
	return s.repo.FindKalmarBySerial(ctx, NormalizeSerial(serial))
}

// DeleteKalmar removes a Kalmar32 unit.
func (s *EquipmentService) DeleteKalmar(ctx context.Context, id string) error {
	if _, err := s.repo.FindKalmarByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteKalmar(ctx, id)
}

// ListKalmars returns a page of Kalmar32 units.
func (s *EquipmentService) ListKalmars(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Kalmar32, int64, error) {
	return s.repo.ListKalmars(ctx, page, pageSize, filters)
}

// GetPhasar loads one Phasar32 unit by id.
func (s *EquipmentService) GetPhasar(ctx context.Context, id string) (*entity.Phasar32, error) {
	return s.repo.FindPhasarByID(ctx, id)
}

// GetPhasarBySerial loads one Phasar32 unit by normalized serial.
func (s *EquipmentService) GetPhasarBySerial(ctx context.Context, serial string) (*entity.Phasar32, error) {
	return s.repo.FindPhasarBySerial(ctx, NormalizeSerial(serial))
}

// DeletePhasar removes a Phasar32 unit.
func (s *EquipmentService) DeletePhasar(ctx context.Context, id string) error {
	if _, err := s.repo.FindPhasarByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeletePhasar(ctx, id)
}

// ListPhasars returns a page of Phasar32 units.
func (s *EquipmentService) ListPhasars(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Phasar32, int64, error) {
	return s.repo.ListPhasars(ctx, page, pageSize, filters)
}
