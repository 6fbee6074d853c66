package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func writeTestKey(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
	keyPath := filepath.Join(t.TempDir(), "license_key.pem")
	if err := os.WriteFile(keyPath, pemData, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return keyPath, priv
}

func setupLicense(t *testing.T) (*LicenseService, *rsa.PrivateKey, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	keyPath, priv := writeTestKey(t)
	return NewLicenseService(repos.License, repos.Equipment, keyPath), priv, repos, db
}

func seedKalmar(t *testing.T, db *gorm.DB, id, serial string) *entity.Kalmar32 {
	t.Helper()
	unit := &entity.Kalmar32{
		ID:           id,
		SerialNumber: serial,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(unit).Error; err != nil {
		t.Fatalf("seed kalmar unit: %v", err)
	}
	return unit
}

func TestIssueForEquipment(t *testing.T) {
	svc, priv, repos, db := setupLicense(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	lic, err := svc.IssueForEquipment(ctx, entity.EquipmentTypeKalmar32, "1024", IssueInput{
		CompanyName: "Rail Diagnostics LLC",
		HostHWID:    "host-abc",
		DeviceHWID:  "device-def",
		Exp:         time.Now().AddDate(1, 0, 0),
		Features:    map[string]string{"channels": "32"},
	}, "user-1")
	if err != nil {
		t.Fatalf("issue license: %v", err)
	}

	if lic.Product != entity.EquipmentTypeKalmar32 {
		t.Errorf("product = %q, want %q", lic.Product, entity.EquipmentTypeKalmar32)
	}
	if err := Verify(lic.LicenseKey, &priv.PublicKey); err != nil {
		t.Errorf("issued key fails verification: %v", err)
	}

	payload, err := DecodePayload(lic.LicenseKey)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.CompanyName != "Rail Diagnostics LLC" || payload.HostHWID != "host-abc" {
		t.Errorf("payload round trip mismatch: %+v", payload)
	}
	if payload.Features["channels"] != "32" {
		t.Errorf("features missing from payload")
	}
	if payload.Ver != "1.0.0" {
		t.Errorf("ver = %q, want default 1.0.0", payload.Ver)
	}

	// The unit is bound to the license.
	unit, err := repos.Equipment.FindKalmarBySerial(ctx, "1024")
	if err != nil {
		t.Fatalf("reload unit: %v", err)
	}
	if unit.LicenseID == nil || *unit.LicenseID != lic.ID {
		t.Errorf("unit should be bound to the issued license")
	}
}

func TestIssueForEquipmentNormalizesSerial(t *testing.T) {
	svc, _, _, db := setupLicense(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	// Punctuated serials resolve to the same unit.
	_, err := svc.IssueForEquipment(ctx, entity.EquipmentTypeKalmar32, "No. 10-24", IssueInput{
		CompanyName: "Rail Diagnostics LLC",
		HostHWID:    "host-abc",
		DeviceHWID:  "device-def",
		Exp:         time.Now().AddDate(0, 6, 0),
	}, "")
	if err != nil {
		t.Fatalf("issue with punctuated serial: %v", err)
	}
}

func TestIssueForEquipmentRejectsPastExpiry(t *testing.T) {
	svc, _, _, db := setupLicense(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	_, err := svc.IssueForEquipment(ctx, entity.EquipmentTypeKalmar32, "1024", IssueInput{
		CompanyName: "Rail Diagnostics LLC",
		HostHWID:    "host-abc",
		DeviceHWID:  "device-def",
		Exp:         time.Now().AddDate(-1, 0, 0),
	}, "")
	if !errors.Is(err, ErrLicenseExpiry) {
		t.Errorf("expected ErrLicenseExpiry, got %v", err)
	}
}

func TestIssueForEquipmentUnknownUnit(t *testing.T) {
	svc, _, _, _ := setupLicense(t)
	ctx := context.Background()

	_, err := svc.IssueForEquipment(ctx, entity.EquipmentTypeKalmar32, "9999", IssueInput{
		CompanyName: "Rail Diagnostics LLC",
		HostHWID:    "host-abc",
		DeviceHWID:  "device-def",
		Exp:         time.Now().AddDate(1, 0, 0),
	}, "")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyRejectsTamperedKey(t *testing.T) {
	svc, priv, _, db := setupLicense(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	lic, err := svc.IssueForEquipment(ctx, entity.EquipmentTypeKalmar32, "1024", IssueInput{
		CompanyName: "Rail Diagnostics LLC",
		HostHWID:    "host-abc",
		DeviceHWID:  "device-def",
		Exp:         time.Now().AddDate(1, 0, 0),
	}, "")
	if err != nil {
		t.Fatalf("issue license: %v", err)
	}

	tampered := "x" + lic.LicenseKey[1:]
	if err := Verify(tampered, &priv.PublicKey); err == nil {
		t.Error("tampered key must not verify")
	}

	if err := Verify("not-a-license", &priv.PublicKey); !errors.Is(err, ErrLicenseFormat) {
		t.Errorf("expected ErrLicenseFormat, got %v", err)
	}
}

func TestCanonicalJSONIsStable(t *testing.T) {
	payload := LicensePayload{
		Ver:         "1.0.0",
		Product:     entity.EquipmentTypePhasar32,
		CompanyName: "Acme",
		HostHWID:    "h",
		DeviceHWID:  "d",
		Exp:         "2027-01-01T00:00:00Z",
		Features:    map[string]string{"b": "2", "a": "1"},
	}

	first, err := canonicalJSON(payload)
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := canonicalJSON(payload)
		if err != nil {
			t.Fatalf("canonical json: %v", err)
		}
		if string(next) != string(first) {
			t.Fatalf("canonical encoding not stable: %s vs %s", first, next)
		}
	}
}
