package entity

import (
	"time"

	"gorm.io/gorm"
)

// Part is an individual manufactured piece used by modules. Parts
// imported from BOM sheets usually carry a decimal number; standard parts
// without one are identified by their full description.
type Part struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	Decimal         string     `json:"decimal,omitempty" gorm:"size:100;index"`
	Name            string     `json:"name" gorm:"size:255;not null;index"`
	ManufacturerID  *string    `json:"manufacturer_id,omitempty" gorm:"size:32"`
	Description     string     `json:"description,omitempty" gorm:"type:text"`
	Material        string     `json:"material,omitempty" gorm:"size:100"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty" gorm:"index"`
	CreatedBy       *string    `json:"created_by,omitempty" gorm:"size:32"`
	UpdatedBy       *string    `json:"updated_by,omitempty" gorm:"size:32"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	Manufacturer *Manufacturer `json:"manufacturer,omitempty" gorm:"foreignKey:ManufacturerID"`
}

func (Part) TableName() string {
	return "parts"
}

func (p *Part) BeforeSave(tx *gorm.DB) error {
	p.Name = NormalizeName(p.Name)
	p.Decimal = NormalizeName(p.Decimal)
	return nil
}

// ModulePart records how many of a part a module contains.
type ModulePart struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ModuleID  string    `json:"module_id" gorm:"size:32;not null;uniqueIndex:uniq_module_part;index"`
	PartID    string    `json:"part_id" gorm:"size:32;not null;uniqueIndex:uniq_module_part"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1;check:chk_module_part_qty,quantity > 0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Module *Module `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Part   *Part   `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (ModulePart) TableName() string {
	return "module_parts"
}
