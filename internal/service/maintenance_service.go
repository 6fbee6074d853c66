package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/notify"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// MaintenanceService watches calibration ages and notifies subscribed
// users about units overdue for recalibration.
type MaintenanceService struct {
	equip    *repository.EquipmentRepository
	userRepo *repository.UserRepository
	telegram *notify.TelegramClient
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewMaintenanceService creates the maintenance service.
func NewMaintenanceService(equip *repository.EquipmentRepository, userRepo *repository.UserRepository, telegram *notify.TelegramClient, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		equip:    equip,
		userRepo: userRepo,
		telegram: telegram,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the daily calibration check.
func (s *MaintenanceService) Start() error {
	_, err := s.cron.AddFunc("0 8 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.RunCalibrationCheck(ctx); err != nil {
			s.logger.Error("calibration check failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule calibration check: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *MaintenanceService) Stop() {
	<-s.cron.Stop().Done()
}

// RunCalibrationCheck finds units whose calibration is older than the
// service interval and notifies subscribed users.
func (s *MaintenanceService) RunCalibrationCheck(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -entity.CalibrationExpireDays)

	kalmars, err := s.equip.ListKalmarsCalibratedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list kalmar units: %w", err)
	}
	phasars, err := s.equip.ListPhasarsCalibratedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list phasar units: %w", err)
	}
	if len(kalmars) == 0 && len(phasars) == 0 {
		return nil
	}

	var overdue []string
	for _, unit := range kalmars {
		overdue = append(overdue, fmt.Sprintf("Kalmar32 %s (calibrated %s)",
			unit.SerialNumber, unit.CalibrationDate.Format("2006-01-02")))
	}
	for _, unit := range phasars {
		overdue = append(overdue, fmt.Sprintf("Phasar32 %s (calibrated %s)",
			unit.SerialNumber, unit.CalibrationDate.Format("2006-01-02")))
	}

	text := "Calibration overdue:"
	for _, line := range overdue {
		text += "\n- " + line
	}

	users, err := s.userRepo.ListNotifiable(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	for _, user := range users {
		if err := s.telegram.SendMessage(ctx, user.TelegramChatID, text); err != nil {
			s.logger.Warn("calibration notification failed",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("calibration check complete",
		zap.Int("overdue_units", len(overdue)),
		zap.Int("notified_users", len(users)))
	return nil
}
