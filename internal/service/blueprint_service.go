package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/storage"
)

// ErrFileExtension is returned for uploads with a wrong extension.
var ErrFileExtension = errors.New("unsupported file extension")

// BlueprintService manages blueprints and their drawing files.
type BlueprintService struct {
	repo  *repository.BlueprintRepository
	store storage.Storage
	audit *AuditService
}

// NewBlueprintService creates the blueprint service.
func NewBlueprintService(repo *repository.BlueprintRepository, store storage.Storage, audit *AuditService) *BlueprintService {
	return &BlueprintService{repo: repo, store: store, audit: audit}
}

// BlueprintInput carries blueprint create/update fields.
type BlueprintInput struct {
	Weight          *float64 `json:"weight"`
	Scale           string   `json:"scale"`
	Version         string   `json:"version"`
	NamingScheme    string   `json:"naming_scheme" binding:"required"`
	DeveloperID     *string  `json:"developer_id"`
	ValidatorID     *string  `json:"validator_id"`
	LeadDesignerID  *string  `json:"lead_designer_id"`
	ChiefDesignerID *string  `json:"chief_designer_id"`
	ApproverID      *string  `json:"approver_id"`
}

// Create inserts a blueprint.
func (s *BlueprintService) Create(ctx context.Context, in BlueprintInput) (*entity.Blueprint, error) {
	bp := &entity.Blueprint{
		Weight:          in.Weight,
		Scale:           in.Scale,
		Version:         in.Version,
		NamingScheme:    in.NamingScheme,
		DeveloperID:     in.DeveloperID,
		ValidatorID:     in.ValidatorID,
		LeadDesignerID:  in.LeadDesignerID,
		ChiefDesignerID: in.ChiefDesignerID,
		ApproverID:      in.ApproverID,
	}
	if err := s.repo.Create(ctx, bp); err != nil {
		return nil, fmt.Errorf("create blueprint: %w", err)
	}
	return bp, nil
}

// Update replaces the editable blueprint fields.
func (s *BlueprintService) Update(ctx context.Context, id string, in BlueprintInput, actorID string) (*entity.Blueprint, error) {
	bp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *bp
	bp.Weight = in.Weight
	bp.Scale = in.Scale
	bp.Version = in.Version
	bp.NamingScheme = in.NamingScheme
	bp.DeveloperID = in.DeveloperID
	bp.ValidatorID = in.ValidatorID
	bp.LeadDesignerID = in.LeadDesignerID
	bp.ChiefDesignerID = in.ChiefDesignerID
	bp.ApproverID = in.ApproverID

	if err := s.repo.Update(ctx, bp); err != nil {
		return nil, fmt.Errorf("update blueprint: %w", err)
	}
	s.audit.RecordUpdate(ctx, &before, bp, actorID)
	return bp, nil
}

// Get loads one blueprint.
func (s *BlueprintService) Get(ctx context.Context, id string) (*entity.Blueprint, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a blueprint and its stored files.
func (s *BlueprintService) Delete(ctx context.Context, id string) error {
	bp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bp.SchemeFileKey != "" {
		_ = s.store.Delete(ctx, bp.SchemeFileKey)
	}
	if bp.StepFileKey != "" {
		_ = s.store.Delete(ctx, bp.StepFileKey)
	}
	return s.repo.Delete(ctx, id)
}

// List returns a page of blueprints.
func (s *BlueprintService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Blueprint, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// UploadFile stores a drawing file. kind is "scheme" (.pdf) or "step"
// (.stp/.step).
func (s *BlueprintService) UploadFile(ctx context.Context, id, kind, fileName string, r io.Reader, size int64) (*entity.Blueprint, error) {
	bp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch kind {
	case "scheme":
		if ext != ".pdf" {
			return nil, ErrFileExtension
		}
	case "step":
		if ext != ".stp" && ext != ".step" {
			return nil, ErrFileExtension
		}
	default:
		return nil, fmt.Errorf("unknown file kind %q", kind)
	}

	key := fmt.Sprintf("blueprints/%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], ext)
	if err := s.store.Put(ctx, key, r, size, contentTypeFor(ext)); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	old := ""
	if kind == "scheme" {
		old = bp.SchemeFileKey
		bp.SchemeFileKey = key
	} else {
		old = bp.StepFileKey
		bp.StepFileKey = key
	}
	if err := s.repo.Update(ctx, bp); err != nil {
		return nil, fmt.Errorf("update blueprint: %w", err)
	}
	if old != "" {
		_ = s.store.Delete(ctx, old)
	}
	return bp, nil
}

// DownloadFile opens a stored drawing file.
func (s *BlueprintService) DownloadFile(ctx context.Context, id, kind string) (io.ReadCloser, string, error) {
	bp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	key := bp.SchemeFileKey
	if kind == "step" {
		key = bp.StepFileKey
	}
	if key == "" {
		return nil, "", storage.ErrNotFound
	}
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return rc, filepath.Base(key), nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".exe":
		return "application/vnd.microsoft.portable-executable"
	default:
		return "application/octet-stream"
	}
}
