package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// MachineRepository persists machines, their client links and converters.
type MachineRepository struct {
	db *gorm.DB
}

// NewMachineRepository creates a machine repository.
func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// FindByID loads a machine with client links and converters.
func (r *MachineRepository) FindByID(ctx context.Context, id string) (*entity.Machine, error) {
	var machine entity.Machine
	err := r.db.WithContext(ctx).
		Preload("Clients.Client").
		Preload("Converters").
		Where("id = ?", id).
		First(&machine).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &machine, nil
}

// FindByNameVersion loads a machine by its unique (name, version) pair.
func (r *MachineRepository) FindByNameVersion(ctx context.Context, name, version string) (*entity.Machine, error) {
	var machine entity.Machine
	err := r.db.WithContext(ctx).
		Where("name = ? AND version = ?", name, version).
		First(&machine).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &machine, nil
}

// Create inserts a machine.
func (r *MachineRepository) Create(ctx context.Context, machine *entity.Machine) error {
	if machine.ID == "" {
		machine.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(machine).Error
}

// Update saves all machine columns.
func (r *MachineRepository) Update(ctx context.Context, machine *entity.Machine) error {
	return r.db.WithContext(ctx).Save(machine).Error
}

// Delete removes a machine together with its links, converters and
// hierarchy rows.
func (r *MachineRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machine_id = ?", id).Delete(&entity.MachineClient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("machine_id = ?", id).Delete(&entity.Converter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("machine_id = ?", id).Delete(&entity.MachineModule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Machine{}, "id = ?", id).Error
	})
}

// List returns a page of machines with optional filters.
func (r *MachineRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Machine, int64, error) {
	var machines []entity.Machine
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Machine{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC, version ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&machines).Error

	return machines, total, err
}

// AttachClient links a client to a machine with an optional comment.
func (r *MachineRepository) AttachClient(ctx context.Context, machineID, clientID, comment string) (*entity.MachineClient, error) {
	link := entity.MachineClient{
		ID:        generateID(),
		MachineID: machineID,
		ClientID:  clientID,
		Comment:   comment,
	}
	if err := r.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// DetachClient removes a machine-client link.
func (r *MachineRepository) DetachClient(ctx context.Context, machineID, clientID string) error {
	return r.db.WithContext(ctx).
		Where("machine_id = ? AND client_id = ?", machineID, clientID).
		Delete(&entity.MachineClient{}).Error
}

// ListClients returns all client links of a machine.
func (r *MachineRepository) ListClients(ctx context.Context, machineID string) ([]entity.MachineClient, error) {
	var links []entity.MachineClient
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("machine_id = ?", machineID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}

// FindConverterByID loads a converter.
func (r *MachineRepository) FindConverterByID(ctx context.Context, id string) (*entity.Converter, error) {
	var conv entity.Converter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &conv, nil
}

// CreateConverter inserts a converter.
func (r *MachineRepository) CreateConverter(ctx context.Context, conv *entity.Converter) error {
	if conv.ID == "" {
		conv.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(conv).Error
}

// UpdateConverter saves all converter columns.
func (r *MachineRepository) UpdateConverter(ctx context.Context, conv *entity.Converter) error {
	return r.db.WithContext(ctx).Save(conv).Error
}

// DeleteConverter removes a converter.
func (r *MachineRepository) DeleteConverter(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Converter{}, "id = ?", id).Error
}

// ListConverters returns all converters of a machine.
func (r *MachineRepository) ListConverters(ctx context.Context, machineID string) ([]entity.Converter, error) {
	var convs []entity.Converter
	err := r.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		Order("created_at ASC").
		Find(&convs).Error
	return convs, err
}
