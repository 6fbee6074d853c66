package handler

import (
	"io"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// BlueprintHandler serves blueprint records and their drawing files.
type BlueprintHandler struct {
	svc *service.BlueprintService
}

func NewBlueprintHandler(svc *service.BlueprintService) *BlueprintHandler {
	return &BlueprintHandler{svc: svc}
}

// List returns a page of blueprints.
func (h *BlueprintHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
	}

	blueprints, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(blueprints, page, pageSize, total))
}

// Create registers a blueprint record.
func (h *BlueprintHandler) Create(c *gin.Context) {
	var in service.BlueprintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bp, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, bp)
}

// Get returns one blueprint with its sign-off users.
func (h *BlueprintHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Blueprint ID is required")
		return
	}

	bp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, bp)
}

// Update modifies a blueprint record.
func (h *BlueprintHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Blueprint ID is required")
		return
	}

	var in service.BlueprintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bp, err := h.svc.Update(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, bp)
}

// Delete removes a blueprint and its stored files.
func (h *BlueprintHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Blueprint ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// UploadFile stores a scheme (pdf) or step model for a blueprint.
func (h *BlueprintHandler) UploadFile(c *gin.Context) {
	id := c.Param("id")
	kind := c.Param("kind")
	if id == "" || kind == "" {
		BadRequest(c, "Blueprint ID and file kind are required")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "Failed to open uploaded file")
		return
	}
	defer src.Close()

	bp, err := h.svc.UploadFile(c.Request.Context(), id, kind, file.Filename, src, file.Size)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, bp)
}

// DownloadFile streams a stored blueprint file.
func (h *BlueprintHandler) DownloadFile(c *gin.Context) {
	id := c.Param("id")
	kind := c.Param("kind")
	if id == "" || kind == "" {
		BadRequest(c, "Blueprint ID and file kind are required")
		return
	}

	reader, key, err := h.svc.DownloadFile(c.Request.Context(), id, kind)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "attachment; filename="+path.Base(key))
	c.Header("Content-Type", "application/octet-stream")

	io.Copy(c.Writer, reader)
}
