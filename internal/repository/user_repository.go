package repository

import (
	"context"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// UserRepository persists users, roles and role assignments.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user with role assignments.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Roles.Role").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindByEmail loads a user by normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Roles.Role").
		Where("email = ?", entity.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Create inserts a user, generating its ID when empty.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves all user columns.
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user and its role assignments.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&entity.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.User{}, "id = ?", id).Error
	})
}

// List returns a page of users with optional filters.
func (r *UserRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.User{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			"%"+keyword+"%", "%"+keyword+"%", "%"+keyword+"%")
	}
	if active, ok := filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Roles.Role").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&users).Error

	return users, total, err
}

// UpdateLastLogin stamps the last successful login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// ListNotifiable returns users subscribed to telegram notifications.
func (r *UserRepository) ListNotifiable(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("telegram_notify = ? AND telegram_chat_id <> ''", true).
		Find(&users).Error
	return users, err
}

// GetAllRoles returns every role ordered by name.
func (r *UserRepository) GetAllRoles(ctx context.Context) ([]entity.Role, error) {
	var roles []entity.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error
	return roles, err
}

// FindRoleByName loads a role by its unique name.
func (r *UserRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

// CreateRole inserts a role, generating its ID when empty.
func (r *UserRepository) CreateRole(ctx context.Context, role *entity.Role) error {
	if role.ID == "" {
		role.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(role).Error
}

// AssignRole links a role to a user.
func (r *UserRepository) AssignRole(ctx context.Context, userID, roleID, description string) error {
	userRole := entity.UserRole{
		ID:              generateID(),
		UserID:          userID,
		RoleID:          roleID,
		RoleDescription: description,
	}
	return r.db.WithContext(ctx).Create(&userRole).Error
}

// RemoveRole unlinks a role from a user.
func (r *UserRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&entity.UserRole{}).Error
}
