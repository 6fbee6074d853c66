package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// ClientRepository persists clients and manufacturers.
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a client repository.
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindByID loads a client.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// FindByName loads a client by its unique name.
func (r *ClientRepository) FindByName(ctx context.Context, name string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&client).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	if client.ID == "" {
		client.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(client).Error
}

// Update saves all client columns.
func (r *ClientRepository) Update(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete removes a client and its machine links.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&entity.MachineClient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Client{}, "id = ?", id).Error
	})
}

// List returns a page of clients with optional filters.
func (r *ClientRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Client{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	if country, ok := filters["country"].(string); ok && country != "" {
		query = query.Where("country = ?", entity.NormalizeCountry(country))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&clients).Error

	return clients, total, err
}

// FindManufacturerByID loads a manufacturer.
func (r *ClientRepository) FindManufacturerByID(ctx context.Context, id string) (*entity.Manufacturer, error) {
	var m entity.Manufacturer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// CreateManufacturer inserts a manufacturer.
func (r *ClientRepository) CreateManufacturer(ctx context.Context, m *entity.Manufacturer) error {
	if m.ID == "" {
		m.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// UpdateManufacturer saves all manufacturer columns.
func (r *ClientRepository) UpdateManufacturer(ctx context.Context, m *entity.Manufacturer) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// DeleteManufacturer removes a manufacturer.
func (r *ClientRepository) DeleteManufacturer(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Manufacturer{}, "id = ?", id).Error
}

// ListManufacturers returns a page of manufacturers with optional filters.
func (r *ClientRepository) ListManufacturers(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Manufacturer, int64, error) {
	var ms []entity.Manufacturer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Manufacturer{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	if country, ok := filters["country"].(string); ok && country != "" {
		query = query.Where("country = ?", entity.NormalizeCountry(country))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&ms).Error

	return ms, total, err
}
