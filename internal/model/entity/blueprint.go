package entity

import "time"

// Blueprint is a versioned technical drawing record. The five user
// references track the sign-off chain; the PDF and STEP files are stored
// in object storage under the recorded keys.
type Blueprint struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	Weight          *float64  `json:"weight,omitempty"`
	Scale           string    `json:"scale,omitempty" gorm:"size:50"`
	Version         string    `json:"version,omitempty" gorm:"size:50"`
	NamingScheme    string    `json:"naming_scheme" gorm:"size:100;not null"`
	DeveloperID     *string   `json:"developer_id,omitempty" gorm:"size:32"`
	ValidatorID     *string   `json:"validator_id,omitempty" gorm:"size:32"`
	LeadDesignerID  *string   `json:"lead_designer_id,omitempty" gorm:"size:32"`
	ChiefDesignerID *string   `json:"chief_designer_id,omitempty" gorm:"size:32"`
	ApproverID      *string   `json:"approver_id,omitempty" gorm:"size:32"`
	SchemeFileKey   string    `json:"scheme_file_key,omitempty" gorm:"size:512"`
	StepFileKey     string    `json:"step_file_key,omitempty" gorm:"size:512"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	Developer     *User `json:"developer,omitempty" gorm:"foreignKey:DeveloperID"`
	Validator     *User `json:"validator,omitempty" gorm:"foreignKey:ValidatorID"`
	LeadDesigner  *User `json:"lead_designer,omitempty" gorm:"foreignKey:LeadDesignerID"`
	ChiefDesigner *User `json:"chief_designer,omitempty" gorm:"foreignKey:ChiefDesignerID"`
	Approver      *User `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
}

func (Blueprint) TableName() string {
	return "blueprints"
}
