package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModuleRepository persists modules, hierarchy links and part links.
type ModuleRepository struct {
	db *gorm.DB
}

// NewModuleRepository creates a module repository.
func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// FindByID loads a module with manufacturer and part links.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*entity.Module, error) {
	var module entity.Module
	err := r.db.WithContext(ctx).
		Preload("Manufacturer").
		Preload("Parts.Part").
		Where("id = ?", id).
		First(&module).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &module, nil
}

// FindByDecimal loads a module by its decimal number.
func (r *ModuleRepository) FindByDecimal(ctx context.Context, decimal string) (*entity.Module, error) {
	var module entity.Module
	err := r.db.WithContext(ctx).Where("decimal = ?", decimal).First(&module).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &module, nil
}

// Create inserts a module.
func (r *ModuleRepository) Create(ctx context.Context, module *entity.Module) error {
	if module.ID == "" {
		module.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(module).Error
}

// Update saves all module columns.
func (r *ModuleRepository) Update(ctx context.Context, module *entity.Module) error {
	return r.db.WithContext(ctx).Save(module).Error
}

// Delete removes a module with its hierarchy rows and part links.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&entity.MachineModule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&entity.ModulePart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Module{}, "id = ?", id).Error
	})
}

// List returns a page of modules with optional filters.
func (r *ModuleRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Module, int64, error) {
	var modules []entity.Module
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Module{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name LIKE ? OR decimal LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Manufacturer").
		Order("decimal ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&modules).Error

	return modules, total, err
}

// FindLinkByID loads one hierarchy link.
func (r *ModuleRepository) FindLinkByID(ctx context.Context, id string) (*entity.MachineModule, error) {
	var link entity.MachineModule
	err := r.db.WithContext(ctx).
		Preload("Module").
		Where("id = ?", id).
		First(&link).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// ListLinksByMachine returns every hierarchy link of a machine in
// insertion order, with modules and their part links preloaded.
func (r *ModuleRepository) ListLinksByMachine(ctx context.Context, machineID string) ([]entity.MachineModule, error) {
	var links []entity.MachineModule
	err := r.db.WithContext(ctx).
		Preload("Module.Parts.Part").
		Where("machine_id = ?", machineID).
		Order("created_at ASC, id ASC").
		Find(&links).Error
	return links, err
}

// ListLinksByModule returns every link that places the given module.
func (r *ModuleRepository) ListLinksByModule(ctx context.Context, moduleID string) ([]entity.MachineModule, error) {
	var links []entity.MachineModule
	err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("created_at ASC, id ASC").
		Find(&links).Error
	return links, err
}

// CreateLink inserts a hierarchy link.
func (r *ModuleRepository) CreateLink(ctx context.Context, link *entity.MachineModule) error {
	if link.ID == "" {
		link.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(link).Error
}

// UpdateLink saves all link columns.
func (r *ModuleRepository) UpdateLink(ctx context.Context, link *entity.MachineModule) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// DeleteLink removes a hierarchy link and reparents its children to the
// removed link's parent.
func (r *ModuleRepository) DeleteLink(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link entity.MachineModule
		if err := tx.Where("id = ?", id).First(&link).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&entity.MachineModule{}).
			Where("parent_id = ?", id).
			Update("parent_id", link.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.MachineModule{}, "id = ?", id).Error
	})
}

// UpsertLink inserts a link or bumps the quantity of an existing
// (machine, module) row.
func (r *ModuleRepository) UpsertLink(ctx context.Context, link *entity.MachineModule) error {
	if link.ID == "" {
		link.ID = generateID()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "machine_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"parent_id", "quantity", "updated_at"}),
		}).
		Create(link).Error
}

// FindModulePart loads one module-part link by its pair.
func (r *ModuleRepository) FindModulePart(ctx context.Context, moduleID, partID string) (*entity.ModulePart, error) {
	var link entity.ModulePart
	err := r.db.WithContext(ctx).
		Where("module_id = ? AND part_id = ?", moduleID, partID).
		First(&link).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// ListModuleParts returns the part links of a module.
func (r *ModuleRepository) ListModuleParts(ctx context.Context, moduleID string) ([]entity.ModulePart, error) {
	var links []entity.ModulePart
	err := r.db.WithContext(ctx).
		Preload("Part").
		Where("module_id = ?", moduleID).
		Order("created_at ASC, id ASC").
		Find(&links).Error
	return links, err
}

// CreateModulePart inserts a module-part link.
func (r *ModuleRepository) CreateModulePart(ctx context.Context, link *entity.ModulePart) error {
	if link.ID == "" {
		link.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(link).Error
}

// UpdateModulePart saves all module-part columns.
func (r *ModuleRepository) UpdateModulePart(ctx context.Context, link *entity.ModulePart) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// DeleteModulePart removes a module-part link.
func (r *ModuleRepository) DeleteModulePart(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.ModulePart{}, "id = ?", id).Error
}

// UpsertModulePart inserts a part link or replaces the quantity of the
// existing (module, part) row.
func (r *ModuleRepository) UpsertModulePart(ctx context.Context, link *entity.ModulePart) error {
	if link.ID == "" {
		link.ID = generateID()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "module_id"}, {Name: "part_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(link).Error
}
