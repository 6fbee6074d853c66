package entity

import (
	"time"

	"gorm.io/gorm"
)

// ModuleStatus values.
const (
	ModuleStatusInProgress = "in_progress"
	ModuleStatusCompleted  = "completed"
	ModuleStatusCancelled  = "cancelled"
)

// Module is a reusable assembly component identified by its decimal
// (drawing) number. The same module may appear in several machines and
// under several parents through MachineModule links.
type Module struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	Decimal        string    `json:"decimal" gorm:"size:100;not null;index"`
	Name           string    `json:"name" gorm:"size:30;not null;index"`
	ManufacturerID *string   `json:"manufacturer_id,omitempty" gorm:"size:32"`
	Version        string    `json:"version,omitempty" gorm:"size:50"`
	Description    string    `json:"description,omitempty" gorm:"type:text"`
	SchemeFileKey  string    `json:"scheme_file_key,omitempty" gorm:"size:512"`
	StepFileKey    string    `json:"step_file_key,omitempty" gorm:"size:512"`
	Status         string    `json:"status" gorm:"size:20;not null;default:in_progress"`
	CreatedBy      *string   `json:"created_by,omitempty" gorm:"size:32"`
	UpdatedBy      *string   `json:"updated_by,omitempty" gorm:"size:32"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Manufacturer *Manufacturer `json:"manufacturer,omitempty" gorm:"foreignKey:ManufacturerID"`
	Parts        []ModulePart  `json:"parts,omitempty" gorm:"foreignKey:ModuleID"`
}

func (Module) TableName() string {
	return "modules"
}

func (m *Module) BeforeSave(tx *gorm.DB) error {
	m.Decimal = NormalizeName(m.Decimal)
	m.Name = NormalizeName(m.Name)
	m.Version = NormalizeName(m.Version)
	return nil
}

// MachineModule places a module into a machine's assembly hierarchy.
// ParentID points at another link of the same machine; links with a nil
// parent are the machine's top-level modules. Quantity must stay positive.
type MachineModule struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	MachineID string    `json:"machine_id" gorm:"size:32;not null;uniqueIndex:uniq_machine_module;index"`
	ModuleID  string    `json:"module_id" gorm:"size:32;not null;uniqueIndex:uniq_machine_module;uniqueIndex:uniq_parent_module"`
	ParentID  *string   `json:"parent_id,omitempty" gorm:"size:32;uniqueIndex:uniq_parent_module;index"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1;check:chk_machine_module_qty,quantity > 0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Machine  *Machine        `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
	Module   *Module         `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Parent   *MachineModule  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []MachineModule `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (MachineModule) TableName() string {
	return "machine_modules"
}
