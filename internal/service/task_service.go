package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/notify"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/storage"
)

// ErrTaskStatus is returned for unknown task status values.
var ErrTaskStatus = errors.New("unknown task status")

var validTaskStatuses = map[string]bool{
	entity.TaskStatusInProgress: true,
	entity.TaskStatusOnReview:   true,
	entity.TaskStatusAccepted:   true,
	entity.TaskStatusRejected:   true,
	entity.TaskStatusAbandoned:  true,
}

// TaskService manages tasks, attachments, record links and the
// notification side channel.
type TaskService struct {
	repo     *repository.TaskRepository
	userRepo *repository.UserRepository
	store    storage.Storage
	telegram *notify.TelegramClient
	logger   *zap.Logger
}

// NewTaskService creates the task service.
func NewTaskService(repo *repository.TaskRepository, userRepo *repository.UserRepository, store storage.Storage, telegram *notify.TelegramClient, logger *zap.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		userRepo: userRepo,
		store:    store,
		telegram: telegram,
		logger:   logger,
	}
}

// TaskInput carries task create/update fields.
type TaskInput struct {
	RecipientID *string    `json:"recipient_id"`
	Title       string     `json:"title" binding:"required,max=100"`
	Message     string     `json:"message" binding:"required"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// Create inserts a task from the acting user.
func (s *TaskService) Create(ctx context.Context, in TaskInput, senderID string) (*entity.Task, error) {
	priority := in.Priority
	if priority == "" {
		priority = entity.TaskPriorityMedium
	}
	var sender *string
	if senderID != "" {
		sender = &senderID
	}
	task := &entity.Task{
		SenderID:    sender,
		RecipientID: in.RecipientID,
		Title:       in.Title,
		Message:     in.Message,
		Priority:    priority,
		Status:      entity.TaskStatusInProgress,
		DueDate:     in.DueDate,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.notifyRecipient(ctx, task, fmt.Sprintf("New task: %s", task.Title))
	return task, nil
}

// Update replaces the editable task fields.
func (s *TaskService) Update(ctx context.Context, id string, in TaskInput) (*entity.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.RecipientID = in.RecipientID
	task.Title = in.Title
	task.Message = in.Message
	if in.Priority != "" {
		task.Priority = in.Priority
	}
	task.DueDate = in.DueDate

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// UpdateStatus moves a task through its workflow. The entity hook
// stamps SentAt on the first transition to on_review.
func (s *TaskService) UpdateStatus(ctx context.Context, id, status string) (*entity.Task, error) {
	if !validTaskStatuses[status] {
		return nil, ErrTaskStatus
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	s.notifyRecipient(ctx, task, fmt.Sprintf("Task %q moved to %s", task.Title, status))
	return task, nil
}

// Get loads one task with users, attachments and links.
func (s *TaskService) Get(ctx context.Context, id string) (*entity.Task, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a task, its attachments and their stored files.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	for _, att := range task.Attachments {
		_ = s.store.Delete(ctx, att.FileKey)
	}
	return s.repo.Delete(ctx, id)
}

// List returns a page of tasks.
func (s *TaskService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Task, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// AddAttachment stores an uploaded file and records it on the task.
func (s *TaskService) AddAttachment(ctx context.Context, taskID, fileName string, r io.Reader, size int64) (*entity.TaskAttachment, error) {
	if _, err := s.repo.FindByID(ctx, taskID); err != nil {
		return nil, err
	}

	ext := filepath.Ext(fileName)
	key := fmt.Sprintf("tasks/%s/%s%s", taskID, uuid.New().String()[:8], ext)
	if err := s.store.Put(ctx, key, r, size, contentTypeFor(ext)); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := &entity.TaskAttachment{
		TaskID:   taskID,
		FileKey:  key,
		FileName: fileName,
		Size:     size,
	}
	if err := s.repo.AddAttachment(ctx, att); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("record attachment: %w", err)
	}
	return att, nil
}

// DownloadAttachment opens a stored attachment.
func (s *TaskService) DownloadAttachment(ctx context.Context, attachmentID string) (io.ReadCloser, string, error) {
	att, err := s.repo.FindAttachmentByID(ctx, attachmentID)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.store.Get(ctx, att.FileKey)
	if err != nil {
		return nil, "", err
	}
	return rc, att.FileName, nil
}

// DeleteAttachment removes an attachment row and its file.
func (s *TaskService) DeleteAttachment(ctx context.Context, attachmentID string) error {
	att, err := s.repo.FindAttachmentByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	_ = s.store.Delete(ctx, att.FileKey)
	return s.repo.DeleteAttachment(ctx, attachmentID)
}

// AddLink records a reference to another record on the task.
func (s *TaskService) AddLink(ctx context.Context, taskID, modelPath string) (*entity.TaskLink, error) {
	if _, err := s.repo.FindByID(ctx, taskID); err != nil {
		return nil, err
	}
	link := &entity.TaskLink{TaskID: taskID, ModelPath: modelPath}
	if err := s.repo.AddLink(ctx, link); err != nil {
		return nil, fmt.Errorf("record link: %w", err)
	}
	return link, nil
}

// DeleteLink removes a record link.
func (s *TaskService) DeleteLink(ctx context.Context, linkID string) error {
	return s.repo.DeleteLink(ctx, linkID)
}

func (s *TaskService) notifyRecipient(ctx context.Context, task *entity.Task, text string) {
	if task.RecipientID == nil || !s.telegram.Enabled() {
		return
	}
	recipient, err := s.userRepo.FindByID(ctx, *task.RecipientID)
	if err != nil || !recipient.TelegramNotify || recipient.TelegramChatID == "" {
		return
	}
	if err := s.telegram.SendMessage(ctx, recipient.TelegramChatID, text); err != nil {
		s.logger.Warn("telegram notification failed",
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}
