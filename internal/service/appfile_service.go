package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/storage"
)

// App binary errors.
var (
	ErrAppFileExt  = errors.New("application binaries must be .exe files")
	ErrAppDownload = errors.New("application download failed")
)

// MaxAppFileSize caps uploaded application binaries at 500 MB.
const MaxAppFileSize = 500 << 20

// AppFileService keeps versioned application binaries, one dated
// directory per release: apps/<type>/<yyyy_mm_dd>/<name>.exe.
type AppFileService struct {
	store      storage.Storage
	httpClient *http.Client
}

// NewAppFileService creates the app binary service.
func NewAppFileService(store storage.Storage) *AppFileService {
	return &AppFileService{
		store:      store,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func binaryName(equipmentType string) string {
	if equipmentType == entity.EquipmentTypePhasar32 {
		return "Phasar.exe"
	}
	return "Kalmar.exe"
}

// ValidType reports whether the type names a known product.
func ValidType(equipmentType string) bool {
	return equipmentType == entity.EquipmentTypeKalmar32 || equipmentType == entity.EquipmentTypePhasar32
}

// Upload stores a new release under today's date directory.
func (s *AppFileService) Upload(ctx context.Context, equipmentType, fileName string, r io.Reader, size int64) (string, error) {
	if !ValidType(equipmentType) {
		return "", ErrEquipmentType
	}
	if !strings.EqualFold(path.Ext(fileName), ".exe") {
		return "", ErrAppFileExt
	}

	key := fmt.Sprintf("apps/%s/%s/%s", equipmentType, time.Now().Format("2006_01_02"), binaryName(equipmentType))
	if err := s.store.Put(ctx, key, r, size, contentTypeFor(".exe")); err != nil {
		return "", fmt.Errorf("store binary: %w", err)
	}
	return key, nil
}

// Latest opens the most recent release of a product.
func (s *AppFileService) Latest(ctx context.Context, equipmentType string) (io.ReadCloser, string, error) {
	versions, err := s.Versions(ctx, equipmentType)
	if err != nil {
		return nil, "", err
	}
	if len(versions) == 0 {
		return nil, "", storage.ErrNotFound
	}

	latest := versions[len(versions)-1]
	key := fmt.Sprintf("apps/%s/%s/%s", equipmentType, latest, binaryName(equipmentType))
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return rc, binaryName(equipmentType), nil
}

// Versions lists the release dates of a product in ascending order.
func (s *AppFileService) Versions(ctx context.Context, equipmentType string) ([]string, error) {
	if !ValidType(equipmentType) {
		return nil, ErrEquipmentType
	}

	prefix := fmt.Sprintf("apps/%s/", equipmentType)
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}

	seen := make(map[string]bool)
	var versions []string
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix)
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true
		versions = append(versions, parts[0])
	}
	// Dates in yyyy_mm_dd form sort chronologically as strings.
	sort.Strings(versions)
	return versions, nil
}

// FetchFromURL downloads a release from a trusted build webhook URL and
// stores it as today's version.
func (s *AppFileService) FetchFromURL(ctx context.Context, equipmentType, rawURL string) (string, error) {
	if !ValidType(equipmentType) {
		return "", ErrEquipmentType
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: invalid url", ErrAppDownload)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAppDownload, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAppDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAppDownload, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, MaxAppFileSize)
	return s.Upload(ctx, equipmentType, binaryName(equipmentType), body, -1)
}
