package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/middleware"
	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/service"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupUserTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	audit := service.NewAuditService(repos.ChangeLog)
	users := service.NewUserService(repos.User, audit)
	h := NewUserHandler(users)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/users", h.List)
	api.GET("/users/:id", h.Get)
	api.GET("/roles", h.ListRoles)

	admin := api.Group("", middleware.RequireRole(entity.RoleAdmin))
	admin.POST("/users", h.Create)
	admin.PUT("/users/:id", h.Update)
	admin.DELETE("/users/:id", h.Delete)
	admin.POST("/users/:id/roles", h.AssignRole)
	admin.DELETE("/users/:id/roles/:role", h.RemoveRole)

	return router, db
}

func TestUserCreateAndRoles(t *testing.T) {
	router, _ := setupUserTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/users", map[string]interface{}{
		"email":      "anna@depot.test",
		"password":   "s3cret-pass",
		"first_name": "Anna",
		"last_name":  "Sokolova",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	userID := data["id"].(string)
	if _, hasHash := data["password_hash"]; hasHash {
		t.Error("Password hash must not be serialized")
	}

	// Duplicate email is rejected.
	w = testutil.DoRequest(router, "POST", "/api/v1/users", map[string]interface{}{
		"email":      "anna@depot.test",
		"password":   "another-pass",
		"first_name": "Anna",
		"last_name":  "Dup",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for a duplicate email, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/users/"+userID+"/roles", map[string]interface{}{
		"role": entity.RoleEngineer,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on role assign, got %d: %s", w.Code, w.Body.String())
	}

	// The role row is created on first assignment.
	w = testutil.DoRequest(router, "GET", "/api/v1/roles", nil, token)
	resp = testutil.ParseResponse(w)
	roles := resp["data"].([]interface{})
	if len(roles) != 1 {
		t.Fatalf("Expected 1 role, got %d", len(roles))
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/users/"+userID+"/roles/"+entity.RoleEngineer, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on role removal, got %d", w.Code)
	}
}

func TestUserAdminGate(t *testing.T) {
	router, db := setupUserTest(t)
	engineerToken := testutil.GenerateTestToken(
		"user-eng", "Engineer", "eng@test.com", []string{entity.RoleEngineer},
	)
	testutil.SeedTestUser(t, db, "user-eng", "En", "Gineer", "eng@test.com")

	// Reads are open to any authenticated user.
	w := testutil.DoRequest(router, "GET", "/api/v1/users", nil, engineerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on list, got %d", w.Code)
	}

	// Writes need the admin role.
	w = testutil.DoRequest(router, "POST", "/api/v1/users", map[string]interface{}{
		"email":      "x@test.com",
		"password":   "longenough",
		"first_name": "X",
		"last_name":  "Y",
	}, engineerToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for a non-admin, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40312 {
		t.Errorf("Expected code 40312, got %v", resp["code"])
	}
}

func TestUserUpdateAndDeactivate(t *testing.T) {
	router, db := setupUserTest(t)
	token := testutil.DefaultTestToken()

	user := testutil.SeedTestUser(t, db, "user-1", "Ivan", "Petrov", "ivan@test.com")

	active := false
	phone := "+7 900 000-00-00"
	w := testutil.DoRequest(router, "PUT", "/api/v1/users/"+user.ID, map[string]interface{}{
		"phone":     phone,
		"is_active": active,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["is_active"] != false {
		t.Errorf("Expected deactivated user, got %v", data["is_active"])
	}
	if data["phone"] != phone {
		t.Errorf("Expected phone %q, got %v", phone, data["phone"])
	}
}
