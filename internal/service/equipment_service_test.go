package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupEquipment(t *testing.T) (*EquipmentService, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	audit := NewAuditService(repos.ChangeLog)
	return NewEquipmentService(repos.Equipment, audit), repos, db
}

func TestNormalizeSerial(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1024", "1024"},
		{"No. 10-24", "1024"},
		{" 10 24 ", "1024"},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSerial(tt.raw); got != tt.want {
			t.Errorf("NormalizeSerial(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestUpsertKalmarCreatesThenUpdates(t *testing.T) {
	svc, _, _ := setupEquipment(t)
	ctx := context.Background()

	unit := &entity.Kalmar32{
		SerialNumber: "No. 10-24",
		CaseNumber:   "C-1",
	}
	saved, created, err := svc.UpsertKalmar(ctx, unit, "user-1")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Error("first upsert should create")
	}
	if saved.SerialNumber != "1024" {
		t.Errorf("serial should be normalized, got %q", saved.SerialNumber)
	}

	again := &entity.Kalmar32{
		SerialNumber: "1024",
		CaseNumber:   "C-2",
	}
	updated, created, err := svc.UpsertKalmar(ctx, again, "user-1")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert for the same serial should update")
	}
	if updated.ID != saved.ID {
		t.Errorf("update must keep the original id")
	}
	if updated.CaseNumber != "C-2" {
		t.Errorf("case number not updated: %q", updated.CaseNumber)
	}
}

func TestUpsertKalmarKeepsLicenseBinding(t *testing.T) {
	svc, repos, db := setupEquipment(t)
	ctx := context.Background()

	unit := &entity.Kalmar32{SerialNumber: "1024"}
	saved, _, err := svc.UpsertKalmar(ctx, unit, "")
	if err != nil {
		t.Fatalf("create unit: %v", err)
	}

	lic := &entity.License{
		ID:         "license-1",
		Ver:        "1.0.0",
		Product:    entity.EquipmentTypeKalmar32,
		Exp:        time.Now().AddDate(1, 0, 0),
		Features:   "{}",
		Signature:  "sig",
		LicenseKey: "key",
	}
	if err := db.Create(lic).Error; err != nil {
		t.Fatalf("seed license: %v", err)
	}
	saved.LicenseID = &lic.ID
	if err := repos.Equipment.UpdateKalmar(ctx, saved); err != nil {
		t.Fatalf("bind license: %v", err)
	}

	// A later sync without a license must not clear the binding.
	again := &entity.Kalmar32{SerialNumber: "1024", CaseNumber: "C-9"}
	updated, _, err := svc.UpsertKalmar(ctx, again, "")
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if updated.LicenseID == nil || *updated.LicenseID != lic.ID {
		t.Error("license binding should survive a re-upsert")
	}
}

func TestUpsertRejectsBadSerial(t *testing.T) {
	svc, _, _ := setupEquipment(t)
	ctx := context.Background()

	_, _, err := svc.UpsertKalmar(ctx, &entity.Kalmar32{SerialNumber: "serial-only-letters"}, "")
	if !errors.Is(err, entity.ErrSerialFormat) {
		t.Errorf("expected ErrSerialFormat, got %v", err)
	}
}

func TestUpsertRejectsFutureDates(t *testing.T) {
	svc, _, _ := setupEquipment(t)
	ctx := context.Background()

	future := time.Now().AddDate(0, 0, 2)

	_, _, err := svc.UpsertKalmar(ctx, &entity.Kalmar32{
		SerialNumber: "1024",
		ShipmentDate: future,
	}, "")
	if !errors.Is(err, entity.ErrShipmentInFuture) {
		t.Errorf("expected ErrShipmentInFuture, got %v", err)
	}

	_, _, err = svc.UpsertPhasar(ctx, &entity.Phasar32{
		SerialNumber:    "2048",
		CalibrationDate: &future,
	}, "")
	if !errors.Is(err, entity.ErrCalibrationInFuture) {
		t.Errorf("expected ErrCalibrationInFuture, got %v", err)
	}
}

func TestUpsertRejectsNegativeWeight(t *testing.T) {
	svc, _, _ := setupEquipment(t)
	ctx := context.Background()

	weight := -1.5
	_, _, err := svc.UpsertKalmar(ctx, &entity.Kalmar32{
		SerialNumber: "1024",
		Weight:       &weight,
	}, "")
	if !errors.Is(err, entity.ErrWeightNegative) {
		t.Errorf("expected ErrWeightNegative, got %v", err)
	}
}

func TestListKalmarsCalibratedBefore(t *testing.T) {
	svc, repos, _ := setupEquipment(t)
	ctx := context.Background()

	overdue := time.Now().AddDate(0, 0, -(entity.CalibrationExpireDays + 10))
	fresh := time.Now().AddDate(0, 0, -10)

	if _, _, err := svc.UpsertKalmar(ctx, &entity.Kalmar32{SerialNumber: "1111", CalibrationDate: &overdue}, ""); err != nil {
		t.Fatalf("seed overdue unit: %v", err)
	}
	if _, _, err := svc.UpsertKalmar(ctx, &entity.Kalmar32{SerialNumber: "2222", CalibrationDate: &fresh}, ""); err != nil {
		t.Fatalf("seed fresh unit: %v", err)
	}

	cutoff := time.Now().AddDate(0, 0, -entity.CalibrationExpireDays)
	units, err := repos.Equipment.ListKalmarsCalibratedBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(units) != 1 || units[0].SerialNumber != "1111" {
		t.Errorf("expected only the overdue unit, got %d units", len(units))
	}
}
