package repository

import (
	"context"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// EquipmentRepository persists Kalmar32 and Phasar32 unit records.
type EquipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates an equipment repository.
func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// FindKalmarByID loads a Kalmar32 unit with its license.
func (r *EquipmentRepository) FindKalmarByID(ctx context.Context, id string) (*entity.Kalmar32, error) {
	var unit entity.Kalmar32
	err := r.db.WithContext(ctx).
		Preload("License").
		Where("id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

// FindKalmarBySerial loads a Kalmar32 unit by serial number.
func (r *EquipmentRepository) FindKalmarBySerial(ctx context.Context, serial string) (*entity.Kalmar32, error) {
	var unit entity.Kalmar32
	err := r.db.WithContext(ctx).
		Preload("License").
		Where("serial_number = ?", serial).
		First(&unit).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

// CreateKalmar inserts a Kalmar32 unit.
func (r *EquipmentRepository) CreateKalmar(ctx context.Context, unit *entity.Kalmar32) error {
	if unit.ID == "" {
		unit.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(unit).Error
}

// UpdateKalmar saves all Kalmar32 columns.
func (r *EquipmentRepository) UpdateKalmar(ctx context.Context, unit *entity.Kalmar32) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// DeleteKalmar removes a Kalmar32 unit and its reports.
func (r *EquipmentRepository) DeleteKalmar(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kalmar_id = ?", id).Delete(&entity.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Kalmar32{}, "id = ?", id).Error
	})
}

// ListKalmars returns a page of Kalmar32 units.
func (r *EquipmentRepository) ListKalmars(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Kalmar32, int64, error) {
	var units []entity.Kalmar32
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Kalmar32{})
	if serial, ok := filters["serial"].(string); ok && serial != "" {
		query = query.Where("serial_number LIKE ?", "%"+serial+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("shipment_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&units).Error

	return units, total, err
}

// FindPhasarByID loads a Phasar32 unit with its license.
func (r *EquipmentRepository) FindPhasarByID(ctx context.Context, id string) (*entity.Phasar32, error) {
	var unit entity.Phasar32
	err := r.db.WithContext(ctx).
		Preload("License").
		Where("id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

// FindPhasarBySerial loads a Phasar32 unit by serial number.
func (r *EquipmentRepository) FindPhasarBySerial(ctx context.Context, serial string) (*entity.Phasar32, error) {
	var unit entity.Phasar32
	err := r.db.WithContext(ctx).
		Preload("License").
		Where("serial_number = ?", serial).
		First(&unit).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

// CreatePhasar inserts a Phasar32 unit.
func (r *EquipmentRepository) CreatePhasar(ctx context.Context, unit *entity.Phasar32) error {
	if unit.ID == "" {
		unit.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(unit).Error
}

// UpdatePhasar saves all Phasar32 columns.
func (r *EquipmentRepository) UpdatePhasar(ctx context.Context, unit *entity.Phasar32) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// DeletePhasar removes a Phasar32 unit and its reports.
func (r *EquipmentRepository) DeletePhasar(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phasar_id = ?", id).Delete(&entity.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Phasar32{}, "id = ?", id).Error
	})
}

// ListPhasars returns a page of Phasar32 units.
func (r *EquipmentRepository) ListPhasars(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Phasar32, int64, error) {
	var units []entity.Phasar32
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Phasar32{})
	if serial, ok := filters["serial"].(string); ok && serial != "" {
		query = query.Where("serial_number LIKE ?", "%"+serial+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("shipment_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&units).Error

	return units, total, err
}

// ListKalmarsCalibratedBefore returns Kalmar32 units whose calibration
// date is set and older than the cutoff.
func (r *EquipmentRepository) ListKalmarsCalibratedBefore(ctx context.Context, cutoff time.Time) ([]entity.Kalmar32, error) {
	var units []entity.Kalmar32
	err := r.db.WithContext(ctx).
		Where("calibration_date IS NOT NULL AND calibration_date < ?", cutoff).
		Find(&units).Error
	return units, err
}

// ListPhasarsCalibratedBefore returns Phasar32 units whose calibration
// date is set and older than the cutoff.
func (r *EquipmentRepository) ListPhasarsCalibratedBefore(ctx context.Context, cutoff time.Time) ([]entity.Phasar32, error) {
	var units []entity.Phasar32
	err := r.db.WithContext(ctx).
		Where("calibration_date IS NOT NULL AND calibration_date < ?", cutoff).
		Find(&units).Error
	return units, err
}
