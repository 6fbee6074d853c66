package repository

import (
	"context"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// ReportRepository persists maintenance reports.
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a report repository.
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindByID loads a report with its unit.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	var report entity.Report
	err := r.db.WithContext(ctx).
		Preload("Kalmar").
		Preload("Phasar").
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

// FindByKalmarKey loads a report by its (kalmar, date, TO) key. The
// date matches by calendar day.
func (r *ReportRepository) FindByKalmarKey(ctx context.Context, kalmarID string, date time.Time, numberTO string) (*entity.Report, error) {
	var report entity.Report
	err := r.db.WithContext(ctx).
		Where("kalmar_id = ? AND report_date >= ? AND report_date < ? AND number_to = ?",
			kalmarID, dayStart(date), dayStart(date).AddDate(0, 0, 1), numberTO).
		First(&report).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

// FindByPhasarKey loads a report by its (phasar, date, TO) key.
func (r *ReportRepository) FindByPhasarKey(ctx context.Context, phasarID string, date time.Time, numberTO string) (*entity.Report, error) {
	var report entity.Report
	err := r.db.WithContext(ctx).
		Where("phasar_id = ? AND report_date >= ? AND report_date < ? AND number_to = ?",
			phasarID, dayStart(date), dayStart(date).AddDate(0, 0, 1), numberTO).
		First(&report).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Create inserts a report.
func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		report.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(report).Error
}

// Update saves all report columns.
func (r *ReportRepository) Update(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// Delete removes a report.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Report{}, "id = ?", id).Error
}

// List returns a page of reports with optional filters.
func (r *ReportRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Report, int64, error) {
	var reports []entity.Report
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Report{})

	if kalmarID, ok := filters["kalmar_id"].(string); ok && kalmarID != "" {
		query = query.Where("kalmar_id = ?", kalmarID)
	}
	if phasarID, ok := filters["phasar_id"].(string); ok && phasarID != "" {
		query = query.Where("phasar_id = ?", phasarID)
	}
	if numberTO, ok := filters["number_to"].(string); ok && numberTO != "" {
		query = query.Where("number_to = ?", numberTO)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Kalmar").
		Preload("Phasar").
		Order("report_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&reports).Error

	return reports, total, err
}
