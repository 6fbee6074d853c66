package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// ChangeLogRepository persists the field-level audit trail.
type ChangeLogRepository struct {
	db *gorm.DB
}

// NewChangeLogRepository creates a changelog repository.
func NewChangeLogRepository(db *gorm.DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

// CreateBatch inserts all rows of one update in a single statement.
func (r *ChangeLogRepository) CreateBatch(ctx context.Context, rows []entity.ChangeLog) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = generateID()
		}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// List returns a page of changelog rows, newest first.
func (r *ChangeLogRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.ChangeLog, int64, error) {
	var rows []entity.ChangeLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ChangeLog{})

	if table, ok := filters["table_name"].(string); ok && table != "" {
		query = query.Where("table_name = ?", table)
	}
	if recordID, ok := filters["record_id"].(string); ok && recordID != "" {
		query = query.Where("record_id = ?", recordID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("ChangedBy").
		Order("changed_on DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&rows).Error

	return rows, total, err
}
