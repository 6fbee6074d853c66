package entity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is the authentication principal. Email is the unique login
// identifier and is normalized to lower case before every save.
type User struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	Email          string     `json:"email" gorm:"size:254;not null;uniqueIndex"`
	PasswordHash   string     `json:"-" gorm:"size:128;not null"`
	FirstName      string     `json:"first_name" gorm:"size:100;not null"`
	LastName       string     `json:"last_name" gorm:"size:100;not null"`
	Phone          string     `json:"phone,omitempty" gorm:"size:20"`
	Address        string     `json:"address,omitempty" gorm:"type:text"`
	IsActive       bool       `json:"is_active" gorm:"not null;default:true"`
	TelegramChatID string     `json:"telegram_chat_id,omitempty" gorm:"size:32"`
	TelegramNotify bool       `json:"telegram_notify" gorm:"not null;default:false"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Roles []UserRole `json:"roles,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	u.Phone = NormalizePhone(u.Phone)
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	return nil
}

// FullName returns "First Last" with surrounding whitespace trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleNames returns the names of all roles assigned to the user.
// Roles must be preloaded with their Role relation.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, ur := range u.Roles {
		if ur.Role != nil {
			names = append(names, ur.Role.Name)
		}
	}
	return names
}

// Role classifies user permissions and responsibilities. Names are unique.
type Role struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// UserRole links a user to a role, optionally with an individual
// description of what the role means for this particular user.
type UserRole struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	UserID          string    `json:"user_id" gorm:"size:32;not null;uniqueIndex:uniq_user_role"`
	RoleID          string    `json:"role_id" gorm:"size:32;not null;uniqueIndex:uniq_user_role"`
	RoleDescription string    `json:"role_description,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role *Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// Built-in role names. RoleAdmin overrides every role gate.
const (
	RoleAdmin       = "admin"
	RoleEngineer    = "engineer"
	RoleDesigner    = "designer"
	RoleManager     = "manager"
	RoleServiceTech = "service_tech"
)
