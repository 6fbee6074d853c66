package service

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// License errors.
var (
	ErrLicenseKey     = errors.New("license signing key unavailable")
	ErrLicenseExpiry  = errors.New("license expiry cannot be in the past")
	ErrLicenseFormat  = errors.New("malformed license key")
	ErrLicenseInvalid = errors.New("license signature verification failed")
)

// LicenseService issues signed license keys and binds them to units.
// A key is base64url(payload).base64url(signature) without padding; the
// payload is canonical JSON (sorted keys, no whitespace) signed with
// RSA-PSS over SHA-256.
type LicenseService struct {
	repo    *repository.LicenseRepository
	equip   *repository.EquipmentRepository
	keyPath string
}

// NewLicenseService creates the license service.
func NewLicenseService(repo *repository.LicenseRepository, equip *repository.EquipmentRepository, keyPath string) *LicenseService {
	return &LicenseService{repo: repo, equip: equip, keyPath: keyPath}
}

// LicensePayload is the signed portion of a license key.
type LicensePayload struct {
	Ver         string            `json:"ver"`
	Product     string            `json:"product"`
	CompanyName string            `json:"company_name"`
	HostHWID    string            `json:"host_hwid"`
	DeviceHWID  string            `json:"device_hwid"`
	Exp         string            `json:"exp"`
	Features    map[string]string `json:"features"`
}

// IssueInput carries the fields of a license request. Ver defaults to
// "1.0.0" when the client omits it.
type IssueInput struct {
	Ver         string            `json:"ver"`
	CompanyName string            `json:"company_name" binding:"required"`
	HostHWID    string            `json:"host_hwid" binding:"required"`
	DeviceHWID  string            `json:"device_hwid" binding:"required"`
	Exp         time.Time         `json:"exp" binding:"required"`
	Features    map[string]string `json:"features"`
}

// IssueForEquipment signs a license for a unit and binds it. The unit
// is located by type and serial.
func (s *LicenseService) IssueForEquipment(ctx context.Context, equipmentType, serial string, in IssueInput, actorID string) (*entity.License, error) {
	if in.Exp.Before(time.Now()) {
		return nil, ErrLicenseExpiry
	}
	if in.Features == nil {
		in.Features = map[string]string{}
	}
	if in.Ver == "" {
		in.Ver = "1.0.0"
	}

	var bind func(licID string) error
	switch equipmentType {
	case entity.EquipmentTypeKalmar32:
		unit, err := s.equip.FindKalmarBySerial(ctx, NormalizeSerial(serial))
		if err != nil {
			return nil, err
		}
		bind = func(licID string) error {
			unit.LicenseID = &licID
			return s.equip.UpdateKalmar(ctx, unit)
		}
	case entity.EquipmentTypePhasar32:
		unit, err := s.equip.FindPhasarBySerial(ctx, NormalizeSerial(serial))
		if err != nil {
			return nil, err
		}
		bind = func(licID string) error {
			unit.LicenseID = &licID
			return s.equip.UpdatePhasar(ctx, unit)
		}
	default:
		return nil, ErrEquipmentType
	}

	payload := LicensePayload{
		Ver:         in.Ver,
		Product:     equipmentType,
		CompanyName: in.CompanyName,
		HostHWID:    in.HostHWID,
		DeviceHWID:  in.DeviceHWID,
		Exp:         in.Exp.UTC().Format(time.RFC3339),
		Features:    in.Features,
	}

	key, signature, err := s.sign(payload)
	if err != nil {
		return nil, err
	}

	featuresJSON, _ := json.Marshal(in.Features)
	var issuer *string
	if actorID != "" {
		issuer = &actorID
	}
	lic := &entity.License{
		Ver:         payload.Ver,
		Product:     payload.Product,
		CompanyName: payload.CompanyName,
		HostHWID:    payload.HostHWID,
		DeviceHWID:  payload.DeviceHWID,
		Exp:         in.Exp.UTC(),
		Features:    string(featuresJSON),
		Signature:   signature,
		LicenseKey:  key,
		IssuedByID:  issuer,
	}
	if err := s.repo.Create(ctx, lic); err != nil {
		return nil, fmt.Errorf("store license: %w", err)
	}
	if err := bind(lic.ID); err != nil {
		return nil, fmt.Errorf("bind license: %w", err)
	}
	return lic, nil
}

// Get loads one license.
func (s *LicenseService) Get(ctx context.Context, id string) (*entity.License, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a page of licenses.
func (s *LicenseService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.License, int64, error) {
	return s.repo.List(ctx, page, pageSize, filters)
}

// sign produces the license key and the detached signature segment.
func (s *LicenseService) sign(payload LicensePayload) (string, string, error) {
	priv, err := s.loadKey()
	if err != nil {
		return "", "", err
	}

	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", "", fmt.Errorf("encode payload: %w", err)
	}

	digest := sha256.Sum256(canonical)
	sig, err := rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], nil)
	if err != nil {
		return "", "", fmt.Errorf("sign payload: %w", err)
	}

	payloadB64 := base64.RawURLEncoding.EncodeToString(canonical)
	sigB64 := base64.RawURLEncoding.EncodeToString(sig)
	key := payloadB64 + "." + sigB64

	// Self check before the key leaves the service.
	if err := Verify(key, &priv.PublicKey); err != nil {
		return "", "", fmt.Errorf("self verification: %w", err)
	}
	return key, sigB64, nil
}

func (s *LicenseService) loadKey() (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(s.keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLicenseKey, err)
	}
	return ParsePrivateKey(data)
}

// ParsePrivateKey reads a PEM encoded RSA private key in PKCS#1 or
// PKCS#8 form.
func ParsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrLicenseKey)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLicenseKey, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrLicenseKey)
	}
	return key, nil
}

// Verify checks a license key against the public key.
func Verify(key string, pub *rsa.PublicKey) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return ErrLicenseFormat
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrLicenseFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrLicenseFormat
	}
	digest := sha256.Sum256(payload)
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, nil); err != nil {
		return ErrLicenseInvalid
	}
	return nil
}

// DecodePayload parses the payload segment of a license key.
func DecodePayload(key string) (*LicensePayload, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return nil, ErrLicenseFormat
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrLicenseFormat
	}
	var payload LicensePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrLicenseFormat
	}
	return &payload, nil
}

// canonicalJSON renders the payload with sorted keys and no extra
// whitespace, so the signed bytes are reproducible across runs.
func canonicalJSON(payload LicensePayload) ([]byte, error) {
	m := map[string]interface{}{
		"ver":          payload.Ver,
		"product":      payload.Product,
		"company_name": payload.CompanyName,
		"host_hwid":    payload.HostHWID,
		"device_hwid":  payload.DeviceHWID,
		"exp":          payload.Exp,
		"features":     payload.Features,
	}
	// encoding/json sorts map keys.
	return json.Marshal(m)
}
