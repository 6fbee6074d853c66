package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alex-1-tech/assemcloud/internal/middleware"
	"github.com/alex-1-tech/assemcloud/internal/model/entity"
)

const JWTSecret = "assemcloud-test-jwt-secret"

// SetupTestDB opens an isolated in-memory sqlite database and migrates
// every table. The database is dropped when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Role{},
		&entity.UserRole{},
		&entity.Client{},
		&entity.Manufacturer{},
		&entity.Machine{},
		&entity.MachineClient{},
		&entity.Converter{},
		&entity.Module{},
		&entity.MachineModule{},
		&entity.Part{},
		&entity.ModulePart{},
		&entity.Blueprint{},
		&entity.Task{},
		&entity.TaskAttachment{},
		&entity.TaskLink{},
		&entity.License{},
		&entity.Kalmar32{},
		&entity.Phasar32{},
		&entity.Report{},
		&entity.ChangeLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group guarded by JWT auth without a
// revocation store.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret, nil))
}

// GenerateTestToken creates a valid access token for tests.
func GenerateTestToken(userID, name, email string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"roles": roles,
		"iss":   "assemcloud",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for an admin test user.
func DefaultTestToken() string {
	return GenerateTestToken(
		"test-user-001",
		"Test Admin",
		"admin@test.com",
		[]string{entity.RoleAdmin},
	)
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedTestUser creates a user row for tests.
func SeedTestUser(t *testing.T, db *gorm.DB, id, firstName, lastName, email string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:           id,
		Email:        email,
		PasswordHash: "x",
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedTestMachine creates a machine row for tests.
func SeedTestMachine(t *testing.T, db *gorm.DB, id, name, version string) *entity.Machine {
	t.Helper()
	machine := &entity.Machine{
		ID:        id,
		Name:      name,
		Version:   version,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(machine).Error; err != nil {
		t.Fatalf("Failed to seed test machine: %v", err)
	}
	return machine
}

// SeedTestModule creates a module row for tests.
func SeedTestModule(t *testing.T, db *gorm.DB, id, decimal, name string) *entity.Module {
	t.Helper()
	module := &entity.Module{
		ID:        id,
		Decimal:   decimal,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(module).Error; err != nil {
		t.Fatalf("Failed to seed test module: %v", err)
	}
	return module
}
