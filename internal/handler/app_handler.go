package handler

import (
	"io"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// AppHandler serves versioned application binaries per equipment type.
type AppHandler struct {
	svc *service.AppFileService
}

func NewAppHandler(svc *service.AppFileService) *AppHandler {
	return &AppHandler{svc: svc}
}

// Upload stores a new application build for an equipment type.
func (h *AppHandler) Upload(c *gin.Context) {
	equipmentType := c.Param("type")
	if !service.ValidType(equipmentType) {
		BadRequest(c, "Unknown equipment type")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required")
		return
	}
	if file.Size > service.MaxAppFileSize {
		BadRequest(c, "Application file exceeds the 500 MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "Failed to open uploaded file")
		return
	}
	defer src.Close()

	key, err := h.svc.Upload(c.Request.Context(), equipmentType, file.Filename, src, file.Size)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, gin.H{"key": key})
}

// Latest streams the most recent build for an equipment type.
func (h *AppHandler) Latest(c *gin.Context) {
	equipmentType := c.Param("type")
	if !service.ValidType(equipmentType) {
		BadRequest(c, "Unknown equipment type")
		return
	}

	reader, key, err := h.svc.Latest(c.Request.Context(), equipmentType)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "attachment; filename="+path.Base(key))
	c.Header("Content-Type", "application/octet-stream")

	io.Copy(c.Writer, reader)
}

// Versions lists the stored build dates for an equipment type.
func (h *AppHandler) Versions(c *gin.Context) {
	equipmentType := c.Param("type")
	if !service.ValidType(equipmentType) {
		BadRequest(c, "Unknown equipment type")
		return
	}

	versions, err := h.svc.Versions(c.Request.Context(), equipmentType)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, versions)
}

// WebhookRequest points at a build artifact to pull.
type WebhookRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// Webhook pulls a new build from an external URL, for CI delivery.
func (h *AppHandler) Webhook(c *gin.Context) {
	equipmentType := c.Param("type")
	if !service.ValidType(equipmentType) {
		BadRequest(c, "Unknown equipment type")
		return
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	key, err := h.svc.FetchFromURL(c.Request.Context(), equipmentType, req.URL)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, gin.H{"key": key})
}
