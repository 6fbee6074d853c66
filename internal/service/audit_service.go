package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// Columns never written to the audit trail.
var untrackedColumns = map[string]bool{
	"id":            true,
	"password_hash": true,
	"last_login_at": true,
	"created_at":    true,
	"updated_at":    true,
}

// AuditService diffs entity snapshots and writes one ChangeLog row per
// changed column.
type AuditService struct {
	repo *repository.ChangeLogRepository
}

// NewAuditService creates the audit service.
func NewAuditService(repo *repository.ChangeLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// RecordUpdate compares two snapshots of the same record and persists
// the differences. Failures are swallowed: the audit trail must never
// fail the update it describes.
func (s *AuditService) RecordUpdate(ctx context.Context, before, after interface{}, actorID string) {
	rows := diffRecords(before, after, actorID)
	if len(rows) == 0 {
		return
	}
	_ = s.repo.CreateBatch(ctx, rows)
}

// List returns a page of audit rows.
func (s *AuditService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.ChangeLog, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

type tabler interface {
	TableName() string
}

func diffRecords(before, after interface{}, actorID string) []entity.ChangeLog {
	bv := reflect.Indirect(reflect.ValueOf(before))
	av := reflect.Indirect(reflect.ValueOf(after))
	if !bv.IsValid() || !av.IsValid() || bv.Type() != av.Type() || bv.Kind() != reflect.Struct {
		return nil
	}

	table := ""
	if t, ok := after.(tabler); ok {
		table = t.TableName()
	} else {
		table = strings.ToLower(bv.Type().Name())
	}

	recordID := ""
	if f := av.FieldByName("ID"); f.IsValid() && f.Kind() == reflect.String {
		recordID = f.String()
	}

	now := time.Now()
	var actor *string
	if actorID != "" {
		actor = &actorID
	}

	var rows []entity.ChangeLog
	t := bv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		column := columnName(field)
		if column == "" || untrackedColumns[column] {
			continue
		}
		if !isScalar(field.Type) {
			continue
		}

		oldVal := renderValue(bv.Field(i))
		newVal := renderValue(av.Field(i))
		if oldVal == newVal {
			continue
		}

		rows = append(rows, entity.ChangeLog{
			TableName_:  table,
			RecordID:    recordID,
			ColumnName:  column,
			OldValue:    oldVal,
			NewValue:    newVal,
			ChangedByID: actor,
			ChangedOn:   now,
		})
	}
	return rows
}

// columnName derives the column from the json tag, falling back to the
// snake-cased field name.
func columnName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if tag != "" {
		name := strings.Split(tag, ",")[0]
		if name != "" {
			return name
		}
	}
	return toSnake(field.Name)
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isScalar(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Struct:
		return t == reflect.TypeOf(time.Time{})
	default:
		return false
	}
}

func renderValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if t, ok := v.Interface().(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", v.Interface())
}
