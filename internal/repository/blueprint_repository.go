package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// BlueprintRepository persists blueprints.
type BlueprintRepository struct {
	db *gorm.DB
}

// NewBlueprintRepository creates a blueprint repository.
func NewBlueprintRepository(db *gorm.DB) *BlueprintRepository {
	return &BlueprintRepository{db: db}
}

// FindByID loads a blueprint with its sign-off chain.
func (r *BlueprintRepository) FindByID(ctx context.Context, id string) (*entity.Blueprint, error) {
	var bp entity.Blueprint
	err := r.db.WithContext(ctx).
		Preload("Developer").
		Preload("Validator").
		Preload("LeadDesigner").
		Preload("ChiefDesigner").
		Preload("Approver").
		Where("id = ?", id).
		First(&bp).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &bp, nil
}

// Create inserts a blueprint.
func (r *BlueprintRepository) Create(ctx context.Context, bp *entity.Blueprint) error {
	if bp.ID == "" {
		bp.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(bp).Error
}

// Update saves all blueprint columns.
func (r *BlueprintRepository) Update(ctx context.Context, bp *entity.Blueprint) error {
	return r.db.WithContext(ctx).Save(bp).Error
}

// Delete removes a blueprint.
func (r *BlueprintRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Blueprint{}, "id = ?", id).Error
}

// List returns a page of blueprints with optional filters.
func (r *BlueprintRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Blueprint, int64, error) {
	var bps []entity.Blueprint
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Blueprint{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("naming_scheme LIKE ?", "%"+keyword+"%")
	}
	if version, ok := filters["version"].(string); ok && version != "" {
		query = query.Where("version = ?", version)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&bps).Error

	return bps, total, err
}
