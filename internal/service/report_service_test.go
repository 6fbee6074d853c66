package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/storage"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupReport(t *testing.T) (*ReportService, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	return NewReportService(repos.Report, repos.Equipment, store), repos, db
}

func TestReportUpsert(t *testing.T) {
	svc, _, db := setupReport(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	date := time.Now().AddDate(0, 0, -1)
	in := ReportInput{
		EquipmentType: entity.EquipmentTypeKalmar32,
		SerialNumber:  "1024",
		ReportDate:    date,
		NumberTO:      entity.NumberTO1,
	}

	report, created, err := svc.Upsert(ctx, in, "user-1")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Error("first upsert should create")
	}
	if report.KalmarID == nil || report.PhasarID != nil {
		t.Error("report must reference exactly the kalmar unit")
	}

	// Same unit, same day, same TO resolves to the existing row.
	again, created, err := svc.Upsert(ctx, in, "user-1")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert should return the existing report")
	}
	if again.ID != report.ID {
		t.Errorf("expected the same report row, got %s and %s", report.ID, again.ID)
	}

	// A different TO on the same day is a new report.
	in.NumberTO = entity.NumberTO2
	other, created, err := svc.Upsert(ctx, in, "user-1")
	if err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if !created || other.ID == report.ID {
		t.Error("a different TO number should create a new report")
	}
}

func TestReportUpsertRejectsFutureDate(t *testing.T) {
	svc, _, db := setupReport(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	_, _, err := svc.Upsert(ctx, ReportInput{
		EquipmentType: entity.EquipmentTypeKalmar32,
		SerialNumber:  "1024",
		ReportDate:    time.Now().AddDate(0, 0, 7),
		NumberTO:      entity.NumberTO1,
	}, "")
	if !errors.Is(err, ErrReportDateFuture) {
		t.Errorf("expected ErrReportDateFuture, got %v", err)
	}
}

func TestReportValidateEquipmentXOR(t *testing.T) {
	kalmarID := "k1"
	phasarID := "p1"

	both := &entity.Report{KalmarID: &kalmarID, PhasarID: &phasarID, NumberTO: entity.NumberTO1}
	if err := both.Validate(); !errors.Is(err, entity.ErrReportEquipment) {
		t.Errorf("both units set: expected ErrReportEquipment, got %v", err)
	}

	neither := &entity.Report{NumberTO: entity.NumberTO1}
	if err := neither.Validate(); !errors.Is(err, entity.ErrReportEquipment) {
		t.Errorf("no unit set: expected ErrReportEquipment, got %v", err)
	}

	bad := &entity.Report{KalmarID: &kalmarID, NumberTO: "TO-9"}
	if err := bad.Validate(); !errors.Is(err, entity.ErrReportNumberTO) {
		t.Errorf("unknown TO: expected ErrReportNumberTO, got %v", err)
	}

	ok := &entity.Report{KalmarID: &kalmarID, NumberTO: entity.NumberTO3}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid report rejected: %v", err)
	}
}

func TestReportResolveBySerial(t *testing.T) {
	svc, _, db := setupReport(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	date := time.Now().AddDate(0, 0, -1)
	report, _, err := svc.Upsert(ctx, ReportInput{
		EquipmentType: entity.EquipmentTypeKalmar32,
		SerialNumber:  "1024",
		ReportDate:    date,
		NumberTO:      entity.NumberTO1,
	}, "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	byID, err := svc.Resolve(ctx, report.ID, "", time.Time{})
	if err != nil || byID.ID != report.ID {
		t.Errorf("resolve by id failed: %v", err)
	}

	bySerial, err := svc.Resolve(ctx, "1024", entity.NumberTO1, date)
	if err != nil {
		t.Fatalf("resolve by serial: %v", err)
	}
	if bySerial.ID != report.ID {
		t.Errorf("resolve by serial returned a different report")
	}
}

func TestReportUploadAndDownloadFile(t *testing.T) {
	svc, _, db := setupReport(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	date := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	report, _, err := svc.Upsert(ctx, ReportInput{
		EquipmentType: entity.EquipmentTypeKalmar32,
		SerialNumber:  "1024",
		ReportDate:    date,
		NumberTO:      entity.NumberTO2,
	}, "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	body := `{"result":"ok"}`
	saved, err := svc.UploadFile(ctx, report, ReportFileJSON, "result.json", strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	want := "reports/kalmar32/1024/TO-2/2026_03_14/json/result.json"
	if saved.JSONFileKey != want {
		t.Errorf("artifact key = %q, want %q", saved.JSONFileKey, want)
	}

	rc, name, err := svc.DownloadFile(ctx, saved, ReportFileJSON)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != body {
		t.Errorf("downloaded content mismatch")
	}
	if name != "result.json" {
		t.Errorf("file name = %q, want result.json", name)
	}

	// The before_to slot maps to its own directory.
	photo := "jpegdata"
	saved, err = svc.UploadFile(ctx, saved, ReportFileBeforeTO, "front.jpg", strings.NewReader(photo), int64(len(photo)))
	if err != nil {
		t.Fatalf("upload photo: %v", err)
	}
	if saved.BeforeTOFileKey != "reports/kalmar32/1024/TO-2/2026_03_14/before_to/front.jpg" {
		t.Errorf("before_to key = %q", saved.BeforeTOFileKey)
	}

	if _, err := artifactSlot(saved, "zip"); !errors.Is(err, ErrReportFileType) {
		t.Errorf("unknown file type should fail with ErrReportFileType")
	}
}

func TestReportDeleteRemovesArtifacts(t *testing.T) {
	svc, _, db := setupReport(t)
	ctx := context.Background()

	seedKalmar(t, db, "unit-1", "1024")

	report, _, err := svc.Upsert(ctx, ReportInput{
		EquipmentType: entity.EquipmentTypeKalmar32,
		SerialNumber:  "1024",
		ReportDate:    time.Now().AddDate(0, 0, -1),
		NumberTO:      entity.NumberTO1,
	}, "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	body := "pdfdata"
	report, err = svc.UploadFile(ctx, report, ReportFilePDF, "report.pdf", strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(ctx, report.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(ctx, report.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("report row should be gone, got %v", err)
	}
}
