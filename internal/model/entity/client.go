package entity

import (
	"time"

	"gorm.io/gorm"
)

// Client is a customer organization that machines are shipped to.
type Client struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:150;not null;uniqueIndex"`
	Country   string    `json:"country" gorm:"size:100;index"`
	Phone     string    `json:"phone,omitempty" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeSave(tx *gorm.DB) error {
	c.Name = NormalizeName(c.Name)
	c.Country = NormalizeCountry(c.Country)
	c.Phone = NormalizePhone(c.Phone)
	return nil
}

// Manufacturer produces modules and parts. Language is the preferred
// communication language with the counterparty.
type Manufacturer struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:150;not null;uniqueIndex"`
	Country   string    `json:"country" gorm:"size:100"`
	Language  string    `json:"language,omitempty" gorm:"size:50"`
	Phone     string    `json:"phone,omitempty" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Manufacturer) TableName() string {
	return "manufacturers"
}

func (m *Manufacturer) BeforeSave(tx *gorm.DB) error {
	m.Name = NormalizeName(m.Name)
	m.Country = NormalizeCountry(m.Country)
	m.Language = NormalizeLanguage(m.Language)
	m.Phone = NormalizePhone(m.Phone)
	return nil
}
