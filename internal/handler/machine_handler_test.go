package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/service"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupMachineTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	audit := service.NewAuditService(repos.ChangeLog)
	machines := service.NewMachineService(repos.Machine, repos.Client, audit)
	assembly := service.NewAssemblyService(repos.Module, repos.Machine)
	importer := service.NewImportService(repos)
	h := NewMachineHandler(machines, assembly, importer)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/machines", h.List)
	api.POST("/machines", h.Create)
	api.GET("/machines/:id", h.Get)
	api.PUT("/machines/:id", h.Update)
	api.DELETE("/machines/:id", h.Delete)
	api.GET("/machines/:id/tree", h.Tree)
	api.GET("/machines/:id/clients", h.ListClients)
	api.POST("/machines/:id/clients", h.AttachClient)
	api.DELETE("/machines/:id/clients/:client_id", h.DetachClient)
	api.POST("/machines/:id/converters", h.AddConverter)
	api.GET("/machines/:id/converters", h.ListConverters)

	return router, db
}

func TestMachineCRUD(t *testing.T) {
	router, _ := setupMachineTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/machines", map[string]interface{}{
		"name":    "UDS2-132",
		"version": "v2",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	machineID := data["id"].(string)
	if machineID == "" {
		t.Fatal("Expected machine id in response")
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/machines/"+machineID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["name"] != "UDS2-132" {
		t.Errorf("Expected name UDS2-132, got %v", data["name"])
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/machines/"+machineID, map[string]interface{}{
		"name":    "UDS2-132",
		"version": "v3",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["version"] != "v3" {
		t.Errorf("Expected version v3, got %v", data["version"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/machines?keyword=UDS2", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	list := resp["data"].(map[string]interface{})
	pagination := list["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 1 {
		t.Errorf("Expected total 1, got %v", pagination["total"])
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/machines/"+machineID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/machines/"+machineID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	if resp["code"].(float64) != 40400 {
		t.Errorf("Expected code 40400, got %v", resp["code"])
	}
}

func TestMachineRequiresAuth(t *testing.T) {
	router, _ := setupMachineTest(t)

	w := testutil.DoRequest(router, "GET", "/api/v1/machines", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40100 {
		t.Errorf("Expected code 40100, got %v", resp["code"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/machines", nil, "not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a garbage token, got %d", w.Code)
	}
}

func TestMachineCreateValidation(t *testing.T) {
	router, _ := setupMachineTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/machines", map[string]interface{}{
		"name": "UDS2-132",
	}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without version, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40000 {
		t.Errorf("Expected code 40000, got %v", resp["code"])
	}
}

func TestMachineClients(t *testing.T) {
	router, db := setupMachineTest(t)
	token := testutil.DefaultTestToken()

	machine := testutil.SeedTestMachine(t, db, "mach-001", "UDS2-132", "v2")
	if err := db.Create(&entity.Client{ID: "client-001", Name: "Rail Depot 7"}).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	w := testutil.DoRequest(router, "POST", "/api/v1/machines/"+machine.ID+"/clients", map[string]interface{}{
		"client_id": "client-001",
		"comment":   "operated since 2024",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/machines/"+machine.ID+"/clients", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	links := resp["data"].([]interface{})
	if len(links) != 1 {
		t.Fatalf("Expected 1 linked client, got %d", len(links))
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/machines/"+machine.ID+"/clients/client-001", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/machines/"+machine.ID+"/clients", nil, token)
	resp = testutil.ParseResponse(w)
	if links, ok := resp["data"].([]interface{}); ok && len(links) != 0 {
		t.Errorf("Expected no linked clients, got %d", len(links))
	}
}

func TestMachineConverters(t *testing.T) {
	router, db := setupMachineTest(t)
	token := testutil.DefaultTestToken()

	machine := testutil.SeedTestMachine(t, db, "mach-001", "UDS2-132", "v2")

	w := testutil.DoRequest(router, "POST", "/api/v1/machines/"+machine.ID+"/converters", map[string]interface{}{
		"name":   "P111-2.5-K12",
		"serial": "77821",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/machines/"+machine.ID+"/converters", nil, token)
	resp := testutil.ParseResponse(w)
	converters := resp["data"].([]interface{})
	if len(converters) != 1 {
		t.Fatalf("Expected 1 converter, got %d", len(converters))
	}
	first := converters[0].(map[string]interface{})
	if first["serial"] != "77821" {
		t.Errorf("Expected serial 77821, got %v", first["serial"])
	}
}
