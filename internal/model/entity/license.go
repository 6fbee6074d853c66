package entity

import "time"

// License is a signed activation record issued for a unit. The
// LicenseKey field stores the full base64url(payload).base64url(signature)
// token; the remaining columns mirror the signed payload so issued
// licenses can be searched without decoding keys.
type License struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Ver         string    `json:"ver" gorm:"size:20;not null;default:'1.0.0'"`
	Product     string    `json:"product" gorm:"size:50;not null;index"`
	CompanyName string    `json:"company_name" gorm:"size:200;not null"`
	HostHWID    string    `json:"host_hwid" gorm:"size:100;not null"`
	DeviceHWID  string    `json:"device_hwid" gorm:"size:100;not null"`
	Exp         time.Time `json:"exp" gorm:"not null;index"`
	Features    string    `json:"features" gorm:"type:jsonb;not null;default:'{}'"`
	Signature   string    `json:"signature" gorm:"type:text;not null"`
	LicenseKey  string    `json:"license_key" gorm:"type:text;not null"`
	IssuedByID  *string   `json:"issued_by_id,omitempty" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	IssuedBy *User `json:"issued_by,omitempty" gorm:"foreignKey:IssuedByID"`
}

func (License) TableName() string {
	return "licenses"
}

// Expired reports whether the license validity window has passed.
func (l *License) Expired() bool {
	return time.Now().After(l.Exp)
}
