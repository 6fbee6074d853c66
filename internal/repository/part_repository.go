package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// PartRepository persists parts.
type PartRepository struct {
	db *gorm.DB
}

// NewPartRepository creates a part repository.
func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// FindByID loads a part with its manufacturer.
func (r *PartRepository) FindByID(ctx context.Context, id string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).
		Preload("Manufacturer").
		Where("id = ?", id).
		First(&part).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}

// FindByDecimal loads a part by its decimal number.
func (r *PartRepository) FindByDecimal(ctx context.Context, decimal string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).Where("decimal = ?", decimal).First(&part).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}

// FindByDescription loads a part by its full description. Standard
// parts imported without a decimal number are matched this way.
func (r *PartRepository) FindByDescription(ctx context.Context, description string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).Where("description = ?", description).First(&part).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}

// Create inserts a part.
func (r *PartRepository) Create(ctx context.Context, part *entity.Part) error {
	if part.ID == "" {
		part.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(part).Error
}

// Update saves all part columns.
func (r *PartRepository) Update(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// Delete removes a part and its module links.
func (r *PartRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("part_id = ?", id).Delete(&entity.ModulePart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Part{}, "id = ?", id).Error
	})
}

// List returns a page of parts with optional filters.
func (r *PartRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Part, int64, error) {
	var parts []entity.Part
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Part{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name LIKE ? OR decimal LIKE ? OR description LIKE ?",
			"%"+keyword+"%", "%"+keyword+"%", "%"+keyword+"%")
	}
	if material, ok := filters["material"].(string); ok && material != "" {
		query = query.Where("material = ?", material)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Manufacturer").
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&parts).Error

	return parts, total, err
}
