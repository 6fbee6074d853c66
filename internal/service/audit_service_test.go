package service

import (
	"context"
	"testing"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func TestAuditRecordUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewAuditService(repos.ChangeLog)
	ctx := context.Background()

	before := &entity.Client{ID: "client-1", Name: "Old Rail Co", Country: "Kazakhstan"}
	after := &entity.Client{ID: "client-1", Name: "New Rail Co", Country: "Kazakhstan", Phone: "+7 700 000 00 00"}

	svc.RecordUpdate(ctx, before, after, "user-1")

	changes, total, err := svc.List(ctx, 1, 20, map[string]interface{}{
		"table_name": "clients",
		"record_id":  "client-1",
	})
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 changed columns, got %d", total)
	}

	byColumn := make(map[string]entity.ChangeLog)
	for _, c := range changes {
		byColumn[c.ColumnName] = c
	}

	name, ok := byColumn["name"]
	if !ok {
		t.Fatal("name change not recorded")
	}
	if name.OldValue != "Old Rail Co" || name.NewValue != "New Rail Co" {
		t.Errorf("name change = %q -> %q", name.OldValue, name.NewValue)
	}
	if name.ChangedByID == nil || *name.ChangedByID != "user-1" {
		t.Errorf("actor not recorded")
	}

	phone, ok := byColumn["phone"]
	if !ok {
		t.Fatal("phone change not recorded")
	}
	if phone.OldValue != "" || phone.NewValue != "+7 700 000 00 00" {
		t.Errorf("phone change = %q -> %q", phone.OldValue, phone.NewValue)
	}
}

func TestAuditSkipsUntrackedColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewAuditService(repos.ChangeLog)
	ctx := context.Background()

	before := &entity.User{ID: "user-1", Email: "a@test.com", PasswordHash: "old", FirstName: "A", LastName: "B"}
	after := &entity.User{ID: "user-1", Email: "a@test.com", PasswordHash: "new", FirstName: "A", LastName: "B"}

	svc.RecordUpdate(ctx, before, after, "")

	_, total, err := svc.List(ctx, 1, 20, map[string]interface{}{
		"table_name": "users",
		"record_id":  "user-1",
	})
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if total != 0 {
		t.Errorf("password hash changes must not be audited, got %d rows", total)
	}
}

func TestAuditNoChangesNoRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewAuditService(repos.ChangeLog)
	ctx := context.Background()

	c := &entity.Client{ID: "client-1", Name: "Rail Co"}
	svc.RecordUpdate(ctx, c, c, "user-1")

	_, total, err := svc.List(ctx, 1, 20, map[string]interface{}{"record_id": "client-1"})
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if total != 0 {
		t.Errorf("identical records should produce no audit rows, got %d", total)
	}
}
