package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// generateID returns a 32 character hex ID.
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// NewID exposes the ID scheme to services that build rows themselves.
func NewID() string {
	return generateID()
}

// Repositories bundles all repositories over one DB handle.
type Repositories struct {
	db *gorm.DB

	User      *UserRepository
	Client    *ClientRepository
	Machine   *MachineRepository
	Module    *ModuleRepository
	Part      *PartRepository
	Blueprint *BlueprintRepository
	Task      *TaskRepository
	Equipment *EquipmentRepository
	License   *LicenseRepository
	Report    *ReportRepository
	ChangeLog *ChangeLogRepository
}

// NewRepositories creates the repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		User:      NewUserRepository(db),
		Client:    NewClientRepository(db),
		Machine:   NewMachineRepository(db),
		Module:    NewModuleRepository(db),
		Part:      NewPartRepository(db),
		Blueprint: NewBlueprintRepository(db),
		Task:      NewTaskRepository(db),
		Equipment: NewEquipmentRepository(db),
		License:   NewLicenseRepository(db),
		Report:    NewReportRepository(db),
		ChangeLog: NewChangeLogRepository(db),
	}
}

// Transaction runs fn against a repository set bound to one database
// transaction. Any error from fn rolls back every write.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
