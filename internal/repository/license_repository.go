package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// LicenseRepository persists issued licenses.
type LicenseRepository struct {
	db *gorm.DB
}

// NewLicenseRepository creates a license repository.
func NewLicenseRepository(db *gorm.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// FindByID loads a license.
func (r *LicenseRepository) FindByID(ctx context.Context, id string) (*entity.License, error) {
	var lic entity.License
	err := r.db.WithContext(ctx).
		Preload("IssuedBy").
		Where("id = ?", id).
		First(&lic).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lic, nil
}

// Create inserts a license.
func (r *LicenseRepository) Create(ctx context.Context, lic *entity.License) error {
	if lic.ID == "" {
		lic.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(lic).Error
}

// Delete removes a license.
func (r *LicenseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.License{}, "id = ?", id).Error
}

// List returns a page of licenses with optional filters.
func (r *LicenseRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.License, int64, error) {
	var lics []entity.License
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.License{})

	if product, ok := filters["product"].(string); ok && product != "" {
		query = query.Where("product = ?", product)
	}
	if company, ok := filters["company"].(string); ok && company != "" {
		query = query.Where("company_name LIKE ?", "%"+company+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&lics).Error

	return lics, total, err
}
