package handler

import (
	"io"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// MaxReportFileSize bounds report artifact uploads.
const MaxReportFileSize = 50 << 20

// ReportHandler serves maintenance reports and their artifacts.
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// List returns a page of reports.
func (h *ReportHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"number_to": c.Query("number_to"),
		"kalmar_id": c.Query("kalmar_id"),
		"phasar_id": c.Query("phasar_id"),
	}

	reports, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(reports, page, pageSize, total))
}

// Upsert creates a report or returns the existing one for the same
// unit, maintenance number and calendar day.
func (h *ReportHandler) Upsert(c *gin.Context) {
	var in service.ReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report, created, err := h.svc.Upsert(c.Request.Context(), in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	if created {
		Created(c, report)
		return
	}
	Success(c, report)
}

// Get returns one report.
func (h *ReportHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Report ID is required")
		return
	}

	report, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, report)
}

// Delete removes a report and its stored artifacts.
func (h *ReportHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Report ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// resolveReport finds a report by id, or by serial number plus the
// number_to and upload_time query params.
func (h *ReportHandler) resolveReport(c *gin.Context) (identifier string, ok bool) {
	identifier = c.Param("id")
	if identifier == "" {
		BadRequest(c, "Report ID or serial number is required")
		return "", false
	}
	return identifier, true
}

func parseUploadTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// UploadFile stores one artifact slot (json, pdf, before, after) of
// a report. The report may be addressed by id or by unit serial with
// number_to and upload_time query params.
func (h *ReportHandler) UploadFile(c *gin.Context) {
	identifier, ok := h.resolveReport(c)
	if !ok {
		return
	}

	fileType := c.Param("file_type")
	if fileType == "" {
		BadRequest(c, "File type is required")
		return
	}

	date, err := parseUploadTime(c.Query("upload_time"))
	if err != nil {
		BadRequest(c, "Invalid upload_time: "+err.Error())
		return
	}

	report, err := h.svc.Resolve(c.Request.Context(), identifier, c.Query("number_to"), date)
	if err != nil {
		HandleError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required")
		return
	}
	if file.Size > MaxReportFileSize {
		BadRequest(c, "Report file exceeds the 50 MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "Failed to open uploaded file")
		return
	}
	defer src.Close()

	saved, err := h.svc.UploadFile(c.Request.Context(), report, fileType, file.Filename, src, file.Size)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, saved)
}

// DownloadFile streams one stored artifact of a report.
func (h *ReportHandler) DownloadFile(c *gin.Context) {
	identifier, ok := h.resolveReport(c)
	if !ok {
		return
	}

	fileType := c.Param("file_type")
	if fileType == "" {
		BadRequest(c, "File type is required")
		return
	}

	date, err := parseUploadTime(c.Query("upload_time"))
	if err != nil {
		BadRequest(c, "Invalid upload_time: "+err.Error())
		return
	}

	report, err := h.svc.Resolve(c.Request.Context(), identifier, c.Query("number_to"), date)
	if err != nil {
		HandleError(c, err)
		return
	}

	reader, key, err := h.svc.DownloadFile(c.Request.Context(), report, fileType)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "attachment; filename="+path.Base(key))
	c.Header("Content-Type", "application/octet-stream")

	io.Copy(c.Writer, reader)
}
