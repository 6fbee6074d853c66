package entity

import (
	"time"

	"gorm.io/gorm"
)

// Machine is a top-level physical assembly. The same machine name may
// exist in several versions; the (name, version) pair is unique.
type Machine struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:uniq_machine_name_version"`
	Version   string    `json:"version" gorm:"size:50;not null;uniqueIndex:uniq_machine_name_version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Clients    []MachineClient `json:"clients,omitempty" gorm:"foreignKey:MachineID"`
	Converters []Converter     `json:"converters,omitempty" gorm:"foreignKey:MachineID"`
}

func (Machine) TableName() string {
	return "machines"
}

func (m *Machine) BeforeSave(tx *gorm.DB) error {
	m.Name = NormalizeName(m.Name)
	m.Version = NormalizeName(m.Version)
	return nil
}

// MachineClient links a machine to a client with an optional comment.
type MachineClient struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	MachineID string    `json:"machine_id" gorm:"size:32;not null;uniqueIndex:uniq_machine_client"`
	ClientID  string    `json:"client_id" gorm:"size:32;not null;uniqueIndex:uniq_machine_client"`
	Comment   string    `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Machine *Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
	Client  *Client  `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (MachineClient) TableName() string {
	return "machine_clients"
}

// Converter is a machine-owned peripheral (ultrasonic transducer block)
// tracked by its own serial number.
type Converter struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	MachineID   string    `json:"machine_id" gorm:"size:32;not null;index"`
	Name        string    `json:"name" gorm:"size:150;not null"`
	Serial      string    `json:"serial,omitempty" gorm:"size:50;index"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Machine *Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
}

func (Converter) TableName() string {
	return "converters"
}
