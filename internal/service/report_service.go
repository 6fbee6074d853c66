package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/storage"
)

// Report errors.
var (
	ErrReportDateFuture = errors.New("report date cannot be in the future")
	ErrReportFileType   = errors.New("file type must be one of json, pdf, before, after")
)

// Artifact slots of a report.
const (
	ReportFileJSON     = "json"
	ReportFilePDF      = "pdf"
	ReportFileBeforeTO = "before"
	ReportFileAfterTO  = "after"
)

// ReportService manages maintenance reports and their artifacts.
type ReportService struct {
	repo  *repository.ReportRepository
	equip *repository.EquipmentRepository
	store storage.Storage
}

// NewReportService creates the report service.
func NewReportService(repo *repository.ReportRepository, equip *repository.EquipmentRepository, store storage.Storage) *ReportService {
	return &ReportService{repo: repo, equip: equip, store: store}
}

// ReportInput carries report creation fields. The unit is addressed by
// type and serial.
type ReportInput struct {
	EquipmentType string    `json:"equipment_type" binding:"required"`
	SerialNumber  string    `json:"serial_number" binding:"required"`
	ReportDate    time.Time `json:"report_date" binding:"required"`
	NumberTO      string    `json:"number_to" binding:"required"`
}

// Upsert creates a report or returns the existing row with the same
// (unit, date, TO) key.
func (s *ReportService) Upsert(ctx context.Context, in ReportInput, actorID string) (*entity.Report, bool, error) {
	if in.ReportDate.After(time.Now()) {
		return nil, false, ErrReportDateFuture
	}

	report := &entity.Report{
		ReportDate: in.ReportDate,
		NumberTO:   in.NumberTO,
	}
	if actorID != "" {
		report.CreatedByID = &actorID
	}

	var existing *entity.Report
	var err error
	switch in.EquipmentType {
	case entity.EquipmentTypeKalmar32:
		unit, ferr := s.equip.FindKalmarBySerial(ctx, NormalizeSerial(in.SerialNumber))
		if ferr != nil {
			return nil, false, ferr
		}
		report.KalmarID = &unit.ID
		existing, err = s.repo.FindByKalmarKey(ctx, unit.ID, in.ReportDate, in.NumberTO)
	case entity.EquipmentTypePhasar32:
		unit, ferr := s.equip.FindPhasarBySerial(ctx, NormalizeSerial(in.SerialNumber))
		if ferr != nil {
			return nil, false, ferr
		}
		report.PhasarID = &unit.ID
		existing, err = s.repo.FindByPhasarKey(ctx, unit.ID, in.ReportDate, in.NumberTO)
	default:
		return nil, false, ErrEquipmentType
	}

	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	if err := report.Validate(); err != nil {
		return nil, false, err
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, false, fmt.Errorf("create report: %w", err)
	}
	return report, true, nil
}

// Get loads one report.
func (s *ReportService) Get(ctx context.Context, id string) (*entity.Report, error) {
	return s.repo.FindByID(ctx, id)
}

// Resolve finds a report by row id, or by unit serial plus the number
// and date of the check.
func (s *ReportService) Resolve(ctx context.Context, identifier, numberTO string, date time.Time) (*entity.Report, error) {
	if report, err := s.repo.FindByID(ctx, identifier); err == nil {
		return report, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	serial := NormalizeSerial(identifier)
	if kalmar, err := s.equip.FindKalmarBySerial(ctx, serial); err == nil {
		return s.repo.FindByKalmarKey(ctx, kalmar.ID, date, numberTO)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	phasar, err := s.equip.FindPhasarBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByPhasarKey(ctx, phasar.ID, date, numberTO)
}

// Delete removes a report and its stored artifacts.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	for _, key := range []string{report.JSONFileKey, report.PDFFileKey, report.BeforeTOFileKey, report.AfterTOFileKey} {
		if key != "" {
			_ = s.store.Delete(ctx, key)
		}
	}
	return s.repo.Delete(ctx, id)
}

// List returns a page of reports.
func (s *ReportService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Report, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// UploadFile stores one artifact of a report, replacing the previous
// file in the same slot.
func (s *ReportService) UploadFile(ctx context.Context, report *entity.Report, fileType, fileName string, r io.Reader, size int64) (*entity.Report, error) {
	slot, err := artifactSlot(report, fileType)
	if err != nil {
		return nil, err
	}

	serial, err := s.unitSerial(ctx, report)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports/%s/%s/%s/%s/%s/%s",
		report.EquipmentType(),
		serial,
		report.NumberTO,
		report.ReportDate.Format("2006_01_02"),
		slotDir(fileType),
		fileName,
	)
	if err := s.store.Put(ctx, key, r, size, contentTypeFor(filepath.Ext(fileName))); err != nil {
		return nil, fmt.Errorf("store report file: %w", err)
	}

	old := *slot
	*slot = key
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	if old != "" && old != key {
		_ = s.store.Delete(ctx, old)
	}
	return report, nil
}

// DownloadFile opens one artifact of a report.
func (s *ReportService) DownloadFile(ctx context.Context, report *entity.Report, fileType string) (io.ReadCloser, string, error) {
	slot, err := artifactSlot(report, fileType)
	if err != nil {
		return nil, "", err
	}
	if *slot == "" {
		return nil, "", storage.ErrNotFound
	}
	rc, err := s.store.Get(ctx, *slot)
	if err != nil {
		return nil, "", err
	}
	return rc, filepath.Base(*slot), nil
}

func (s *ReportService) unitSerial(ctx context.Context, report *entity.Report) (string, error) {
	if report.KalmarID != nil {
		unit, err := s.equip.FindKalmarByID(ctx, *report.KalmarID)
		if err != nil {
			return "", err
		}
		return unit.SerialNumber, nil
	}
	if report.PhasarID != nil {
		unit, err := s.equip.FindPhasarByID(ctx, *report.PhasarID)
		if err != nil {
			return "", err
		}
		return unit.SerialNumber, nil
	}
	return "", entity.ErrReportEquipment
}

func artifactSlot(report *entity.Report, fileType string) (*string, error) {
	switch fileType {
	case ReportFileJSON:
		return &report.JSONFileKey, nil
	case ReportFilePDF:
		return &report.PDFFileKey, nil
	case ReportFileBeforeTO:
		return &report.BeforeTOFileKey, nil
	case ReportFileAfterTO:
		return &report.AfterTOFileKey, nil
	default:
		return nil, ErrReportFileType
	}
}

func slotDir(fileType string) string {
	switch fileType {
	case ReportFileBeforeTO:
		return "before_to"
	case ReportFileAfterTO:
		return "after_to"
	default:
		return fileType
	}
}
