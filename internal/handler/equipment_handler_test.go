package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/service"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupEquipmentTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	audit := service.NewAuditService(repos.ChangeLog)
	equipment := service.NewEquipmentService(repos.Equipment, audit)
	h := NewEquipmentHandler(equipment, nil)

	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/equipment", h.Upsert)
	api.GET("/kalmar", h.ListKalmars)
	api.GET("/kalmar/units/:id", h.GetKalmar)
	api.GET("/kalmar/serial/:serial", h.GetKalmarBySerial)
	api.DELETE("/kalmar/units/:id", h.DeleteKalmar)
	api.GET("/phasar", h.ListPhasars)

	return router, db
}

func TestEquipmentUpsertKalmar(t *testing.T) {
	router, _ := setupEquipmentTest(t)
	token := testutil.DefaultTestToken()

	shipment := time.Now().AddDate(0, -1, 0).Format(time.RFC3339)

	w := testutil.DoRequest(router, "POST", "/api/v1/equipment", map[string]interface{}{
		"equipment_type": "kalmar32",
		"serial_number":  "No. 10-24",
		"shipment_date":  shipment,
		"case_number":    "C-17",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on first upsert, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["serial_number"] != "1024" {
		t.Errorf("Expected normalized serial 1024, got %v", data["serial_number"])
	}
	unitID := data["id"].(string)

	// A second push for the same serial updates in place.
	w = testutil.DoRequest(router, "POST", "/api/v1/equipment", map[string]interface{}{
		"equipment_type": "kalmar32",
		"serial_number":  "1024",
		"shipment_date":  shipment,
		"case_number":    "C-18",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on second upsert, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["id"] != unitID {
		t.Errorf("Expected the same unit id, got %v", data["id"])
	}
	if data["case_number"] != "C-18" {
		t.Errorf("Expected case number C-18, got %v", data["case_number"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/kalmar/serial/1024", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/kalmar", nil, token)
	resp = testutil.ParseResponse(w)
	list := resp["data"].(map[string]interface{})
	pagination := list["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 1 {
		t.Errorf("Expected 1 kalmar unit, got %v", pagination["total"])
	}
}

func TestEquipmentUpsertRejectsBadType(t *testing.T) {
	router, _ := setupEquipmentTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/equipment", map[string]interface{}{
		"equipment_type": "sonar99",
		"serial_number":  "1024",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for an unknown equipment type, got %d", w.Code)
	}
}

func TestEquipmentUpsertRejectsBadSerial(t *testing.T) {
	router, _ := setupEquipmentTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/equipment", map[string]interface{}{
		"equipment_type": "kalmar32",
		"serial_number":  "abc",
		"shipment_date":  time.Now().AddDate(0, -1, 0).Format(time.RFC3339),
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for a malformed serial, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40000 {
		t.Errorf("Expected code 40000, got %v", resp["code"])
	}
}

func TestEquipmentDeleteKalmar(t *testing.T) {
	router, _ := setupEquipmentTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/equipment", map[string]interface{}{
		"equipment_type": "kalmar32",
		"serial_number":  "2048",
		"shipment_date":  time.Now().AddDate(0, -1, 0).Format(time.RFC3339),
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	unitID := resp["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, "DELETE", "/api/v1/kalmar/units/"+unitID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/kalmar/units/"+unitID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}
