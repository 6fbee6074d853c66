package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// ErrEmailTaken is returned when the email already belongs to a user.
var ErrEmailTaken = errors.New("email already registered")

// UserService manages user accounts and role assignments.
type UserService struct {
	repo  *repository.UserRepository
	audit *AuditService
}

// NewUserService creates the user service.
func NewUserService(repo *repository.UserRepository, audit *AuditService) *UserService {
	return &UserService{repo: repo, audit: audit}
}

// CreateUserInput carries the fields accepted on user creation.
type CreateUserInput struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	TelegramChatID string `json:"telegram_chat_id"`
	TelegramNotify bool   `json:"telegram_notify"`
}

// Create registers a user with a bcrypt password hash.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Email:          in.Email,
		PasswordHash:   string(hash),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Phone:          in.Phone,
		Address:        in.Address,
		TelegramChatID: in.TelegramChatID,
		TelegramNotify: in.TelegramNotify,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateUserInput carries the fields accepted on user update. Nil
// pointers leave the column untouched.
type UpdateUserInput struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	IsActive       *bool   `json:"is_active"`
	TelegramChatID *string `json:"telegram_chat_id"`
	TelegramNotify *bool   `json:"telegram_notify"`
	Password       *string `json:"password"`
}

// Update applies a partial update and records changed columns.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput, actorID string) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *user

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.TelegramChatID != nil {
		user.TelegramChatID = *in.TelegramChatID
	}
	if in.TelegramNotify != nil {
		user.TelegramNotify = *in.TelegramNotify
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit.RecordUpdate(ctx, &before, user, actorID)
	return user, nil
}

// Get loads one user.
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.User, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// Roles returns all defined roles.
func (s *UserService) Roles(ctx context.Context) ([]entity.Role, error) {
	return s.repo.GetAllRoles(ctx)
}

// AssignRole attaches a role to a user by role name, creating the role
// row on first use.
func (s *UserService) AssignRole(ctx context.Context, userID, roleName, description string) error {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}

	role, err := s.repo.FindRoleByName(ctx, roleName)
	if errors.Is(err, repository.ErrNotFound) {
		role = &entity.Role{Name: roleName}
		if err := s.repo.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("create role: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("find role: %w", err)
	}

	return s.repo.AssignRole(ctx, userID, role.ID, description)
}

// RemoveRole detaches a role from a user by role name.
func (s *UserService) RemoveRole(ctx context.Context, userID, roleName string) error {
	role, err := s.repo.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.repo.RemoveRole(ctx, userID, role.ID)
}
