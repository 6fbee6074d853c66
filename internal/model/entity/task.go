package entity

import (
	"time"

	"gorm.io/gorm"
)

// Task priority levels.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task statuses.
const (
	TaskStatusInProgress = "in_progress"
	TaskStatusOnReview   = "on_review"
	TaskStatusAccepted   = "accepted"
	TaskStatusRejected   = "rejected"
	TaskStatusAbandoned  = "abandoned"
)

// Task is an internal work item sent from one user to another. SentAt is
// stamped exactly once, the first time the status moves to on_review.
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	SenderID    *string    `json:"sender_id,omitempty" gorm:"size:32"`
	RecipientID *string    `json:"recipient_id,omitempty" gorm:"size:32"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Message     string     `json:"message" gorm:"type:text;not null"`
	Priority    string     `json:"priority" gorm:"size:10;not null;default:medium"`
	Status      string     `json:"status" gorm:"size:20;not null;default:in_progress"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:,sort:desc"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Sender      *User            `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient   *User            `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Attachments []TaskAttachment `json:"attachments,omitempty" gorm:"foreignKey:TaskID"`
	Links       []TaskLink       `json:"links,omitempty" gorm:"foreignKey:TaskID"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Status == TaskStatusOnReview && t.SentAt == nil {
		now := time.Now()
		t.SentAt = &now
	}
	return nil
}

// TaskAttachment is a file attached to a task, stored by key.
type TaskAttachment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TaskID    string    `json:"task_id" gorm:"size:32;not null;index"`
	FileKey   string    `json:"file_key" gorm:"size:512;not null"`
	FileName  string    `json:"file_name" gorm:"size:255;not null"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (TaskAttachment) TableName() string {
	return "task_attachments"
}

// TaskLink references another record in the system by its model path,
// in the form "core/<model>/<id>".
type TaskLink struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TaskID    string    `json:"task_id" gorm:"size:32;not null;index"`
	ModelPath string    `json:"model_path" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (TaskLink) TableName() string {
	return "task_links"
}
