package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/service"
	"github.com/alex-1-tech/assemcloud/internal/storage"
	"github.com/alex-1-tech/assemcloud/internal/testutil"
)

func setupReportTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	reports := service.NewReportService(repos.Report, repos.Equipment, store)
	h := NewReportHandler(reports)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/reports", h.List)
	api.POST("/reports", h.Upsert)
	api.GET("/reports/:id", h.Get)
	api.DELETE("/reports/:id", h.Delete)
	api.POST("/reports/:id/files/:file_type", h.UploadFile)
	api.PUT("/reports/:id/files/:file_type", h.UploadFile)
	api.GET("/reports/:id/files/:file_type", h.DownloadFile)

	return router, db
}

func doMultipartUpload(t *testing.T, r *gin.Engine, method, path, fileName, content, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestReport(t *testing.T, router *gin.Engine, db *gorm.DB, token string) string {
	t.Helper()

	unit := &entity.Kalmar32{ID: "unit-1", SerialNumber: "1024", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(unit).Error; err != nil {
		t.Fatalf("seed kalmar unit: %v", err)
	}

	w := testutil.DoRequest(router, "POST", "/api/v1/reports", map[string]interface{}{
		"equipment_type": entity.EquipmentTypeKalmar32,
		"serial_number":  "1024",
		"report_date":    time.Now().AddDate(0, 0, -1).Format(time.RFC3339),
		"number_to":      entity.NumberTO1,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create report: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestReportUploadFilePut(t *testing.T) {
	router, db := setupReportTest(t)
	token := testutil.DefaultTestToken()

	reportID := createTestReport(t, router, db, token)

	// PUT stores the artifact the same way POST does.
	w := doMultipartUpload(t, router, http.MethodPut, "/api/v1/reports/"+reportID+"/files/pdf", "report.pdf", "pdfdata", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on PUT upload, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if key, _ := data["pdf_file_key"].(string); key == "" {
		t.Error("expected pdf_file_key to be set after PUT upload")
	}

	// PUT again replaces the slot.
	w = doMultipartUpload(t, router, http.MethodPut, "/api/v1/reports/"+reportID+"/files/pdf", "report_v2.pdf", "pdfdata2", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on replacing PUT upload, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	key, _ := data["pdf_file_key"].(string)
	if key == "" || !bytes.HasSuffix([]byte(key), []byte("report_v2.pdf")) {
		t.Errorf("expected pdf_file_key ending in report_v2.pdf, got %q", key)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/reports/"+reportID+"/files/pdf", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on download, got %d", w.Code)
	}
	if w.Body.String() != "pdfdata2" {
		t.Errorf("downloaded content = %q, want pdfdata2", w.Body.String())
	}
}

func TestReportUploadFilePost(t *testing.T) {
	router, db := setupReportTest(t)
	token := testutil.DefaultTestToken()

	reportID := createTestReport(t, router, db, token)

	w := doMultipartUpload(t, router, http.MethodPost, "/api/v1/reports/"+reportID+"/files/json", "result.json", `{"ok":true}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on POST upload, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if key, _ := data["json_file_key"].(string); key == "" {
		t.Error("expected json_file_key to be set after POST upload")
	}
}

func TestReportUploadFileUnknownReport(t *testing.T) {
	router, _ := setupReportTest(t)
	token := testutil.DefaultTestToken()

	w := doMultipartUpload(t, router, http.MethodPut, "/api/v1/reports/no-such/files/pdf", "report.pdf", "pdfdata", token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown report, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40400 {
		t.Errorf("expected code 40400, got %v", resp["code"])
	}
}
