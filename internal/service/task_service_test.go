package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/notify"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/storage"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupTask(t *testing.T) (*TaskService, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	telegram := notify.NewTelegramClient("")
	return NewTaskService(repos.Task, repos.User, store, telegram, zap.NewNop()), repos, db
}

func TestTaskCreateDefaultsPriority(t *testing.T) {
	svc, _, db := setupTask(t)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "user-1", "Ivan", "Petrov", "ivan@test.com")

	task, err := svc.Create(ctx, TaskInput{
		Title:   "Check axle block",
		Message: "Axle block on UDS2-132 needs inspection",
	}, sender.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Priority != entity.TaskPriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if task.Status != entity.TaskStatusInProgress {
		t.Errorf("status = %q, want in_progress", task.Status)
	}
	if task.SentAt != nil {
		t.Error("sent_at must be empty for a fresh task")
	}
}

func TestTaskSentAtStampedOnce(t *testing.T) {
	svc, _, db := setupTask(t)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "user-1", "Ivan", "Petrov", "ivan@test.com")

	task, err := svc.Create(ctx, TaskInput{Title: "T", Message: "M"}, sender.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	task, err = svc.UpdateStatus(ctx, task.ID, entity.TaskStatusOnReview)
	if err != nil {
		t.Fatalf("move to on_review: %v", err)
	}
	if task.SentAt == nil {
		t.Fatal("sent_at should be stamped on first on_review")
	}
	stamped := *task.SentAt

	time.Sleep(10 * time.Millisecond)

	task, err = svc.UpdateStatus(ctx, task.ID, entity.TaskStatusRejected)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	task, err = svc.UpdateStatus(ctx, task.ID, entity.TaskStatusOnReview)
	if err != nil {
		t.Fatalf("second on_review: %v", err)
	}
	if task.SentAt == nil || !task.SentAt.Equal(stamped) {
		t.Error("sent_at must keep its first value")
	}
}

func TestTaskUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _, db := setupTask(t)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "user-1", "Ivan", "Petrov", "ivan@test.com")
	task, err := svc.Create(ctx, TaskInput{Title: "T", Message: "M"}, sender.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	_, err = svc.UpdateStatus(ctx, task.ID, "done")
	if !errors.Is(err, ErrTaskStatus) {
		t.Errorf("expected ErrTaskStatus, got %v", err)
	}
}

func TestTaskAttachmentLifecycle(t *testing.T) {
	svc, _, db := setupTask(t)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "user-1", "Ivan", "Petrov", "ivan@test.com")
	task, err := svc.Create(ctx, TaskInput{Title: "T", Message: "M"}, sender.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	body := "attachment body"
	att, err := svc.AddAttachment(ctx, task.ID, "notes.txt", strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if att.FileName != "notes.txt" {
		t.Errorf("file name = %q", att.FileName)
	}

	rc, name, err := svc.DownloadAttachment(ctx, att.ID)
	if err != nil {
		t.Fatalf("download attachment: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != body || name != "notes.txt" {
		t.Errorf("attachment round trip failed")
	}

	if err := svc.DeleteAttachment(ctx, att.ID); err != nil {
		t.Fatalf("delete attachment: %v", err)
	}
	if _, _, err := svc.DownloadAttachment(ctx, att.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("attachment should be gone, got %v", err)
	}
}

func TestTaskLinks(t *testing.T) {
	svc, _, db := setupTask(t)
	ctx := context.Background()

	sender := testutil.SeedTestUser(t, db, "user-1", "Ivan", "Petrov", "ivan@test.com")
	task, err := svc.Create(ctx, TaskInput{Title: "T", Message: "M"}, sender.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	link, err := svc.AddLink(ctx, task.ID, "core/module/abc123")
	if err != nil {
		t.Fatalf("add link: %v", err)
	}

	loaded, err := svc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if len(loaded.Links) != 1 || loaded.Links[0].ModelPath != "core/module/abc123" {
		t.Errorf("link missing on task")
	}

	if err := svc.DeleteLink(ctx, link.ID); err != nil {
		t.Fatalf("delete link: %v", err)
	}
}
