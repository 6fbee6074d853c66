package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alex-1-tech/assemcloud/internal/config"
	"github.com/alex-1-tech/assemcloud/internal/notify"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/storage"
)

// Services bundles all services over the repository set.
type Services struct {
	Auth        *AuthService
	User        *UserService
	Client      *ClientService
	Machine     *MachineService
	Module      *ModuleService
	Assembly    *AssemblyService
	Import      *ImportService
	Part        *PartService
	Blueprint   *BlueprintService
	Task        *TaskService
	Equipment   *EquipmentService
	License     *LicenseService
	Report      *ReportService
	AppFile     *AppFileService
	Audit       *AuditService
	Maintenance *MaintenanceService
}

// NewServices wires the service set: picks the storage backend from
// config, builds the Telegram client and the license signer.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	store, err := newStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	telegram := notify.NewTelegramClient(cfg.Telegram.BotToken)

	audit := NewAuditService(repos.ChangeLog)
	equipment := NewEquipmentService(repos.Equipment, audit)
	taskSvc := NewTaskService(repos.Task, repos.User, store, telegram, logger)

	return &Services{
		Auth:        NewAuthService(repos.User, rdb, cfg),
		User:        NewUserService(repos.User, audit),
		Client:      NewClientService(repos.Client, audit),
		Machine:     NewMachineService(repos.Machine, repos.Client, audit),
		Module:      NewModuleService(repos.Module, repos.Part, audit),
		Assembly:    NewAssemblyService(repos.Module, repos.Machine),
		Import:      NewImportService(repos),
		Part:        NewPartService(repos.Part, audit),
		Blueprint:   NewBlueprintService(repos.Blueprint, store, audit),
		Task:        taskSvc,
		Equipment:   equipment,
		License:     NewLicenseService(repos.License, repos.Equipment, cfg.License.KeyPath),
		Report:      NewReportService(repos.Report, repos.Equipment, store),
		AppFile:     NewAppFileService(store),
		Audit:       audit,
		Maintenance: NewMaintenanceService(repos.Equipment, repos.User, telegram, logger),
	}, nil
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage.Backend == "minio" && cfg.Storage.Endpoint != "" {
		return storage.NewMinIOStorage(context.Background(), storage.MinIOOptions{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
	}
	return storage.NewLocalStorage(cfg.Storage.LocalRoot)
}
