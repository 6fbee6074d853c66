package repository

import (
	"context"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"gorm.io/gorm"
)

// TaskRepository persists tasks with attachments and record links.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a task repository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByID loads a task with users, attachments and links.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	var task entity.Task
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		Preload("Attachments").
		Preload("Links").
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	if task.ID == "" {
		task.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// Update saves all task columns.
func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete removes a task with attachments and links.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&entity.TaskAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&entity.TaskLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Task{}, "id = ?", id).Error
	})
}

// List returns a page of tasks with optional filters.
func (r *TaskRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Task, int64, error) {
	var tasks []entity.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Task{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("title LIKE ? OR message LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if priority, ok := filters["priority"].(string); ok && priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if senderID, ok := filters["sender_id"].(string); ok && senderID != "" {
		query = query.Where("sender_id = ?", senderID)
	}
	if recipientID, ok := filters["recipient_id"].(string); ok && recipientID != "" {
		query = query.Where("recipient_id = ?", recipientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Sender").
		Preload("Recipient").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&tasks).Error

	return tasks, total, err
}

// AddAttachment stores an attachment row for a task.
func (r *TaskRepository) AddAttachment(ctx context.Context, att *entity.TaskAttachment) error {
	if att.ID == "" {
		att.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(att).Error
}

// FindAttachmentByID loads one attachment.
func (r *TaskRepository) FindAttachmentByID(ctx context.Context, id string) (*entity.TaskAttachment, error) {
	var att entity.TaskAttachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&att).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &att, nil
}

// DeleteAttachment removes one attachment row.
func (r *TaskRepository) DeleteAttachment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.TaskAttachment{}, "id = ?", id).Error
}

// AddLink stores a record link for a task.
func (r *TaskRepository) AddLink(ctx context.Context, link *entity.TaskLink) error {
	if link.ID == "" {
		link.ID = generateID()
	}
	return r.db.WithContext(ctx).Create(link).Error
}

// DeleteLink removes one record link.
func (r *TaskRepository) DeleteLink(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.TaskLink{}, "id = ?", id).Error
}
