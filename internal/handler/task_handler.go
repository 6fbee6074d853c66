package handler

import (
	"io"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// MaxAttachmentSize bounds task attachment uploads.
const MaxAttachmentSize = 50 << 20

// TaskHandler serves tasks, attachments and entity links.
type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List returns a page of tasks.
func (h *TaskHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword":      c.Query("keyword"),
		"status":       c.Query("status"),
		"priority":     c.Query("priority"),
		"sender_id":    c.Query("sender_id"),
		"recipient_id": c.Query("recipient_id"),
	}

	tasks, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(tasks, page, pageSize, total))
}

// Create opens a task with the current user as sender.
func (h *TaskHandler) Create(c *gin.Context) {
	var in service.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.Create(c.Request.Context(), in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, task)
}

// Get returns one task with attachments and links.
func (h *TaskHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Task ID is required")
		return
	}

	task, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, task)
}

// Update modifies a task's editable fields.
func (h *TaskHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Task ID is required")
		return
	}

	var in service.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, task)
}

// UpdateStatusRequest moves a task through its workflow.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus transitions a task to a new workflow state.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Task ID is required")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, task)
}

// Delete removes a task, its attachments and links.
func (h *TaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Task ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// AddAttachment uploads a file onto a task.
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Task ID is required")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required")
		return
	}
	if file.Size > MaxAttachmentSize {
		BadRequest(c, "Attachment exceeds the 50 MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "Failed to open uploaded file")
		return
	}
	defer src.Close()

	attachment, err := h.svc.AddAttachment(c.Request.Context(), id, file.Filename, src, file.Size)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, attachment)
}

// DownloadAttachment streams a task attachment.
func (h *TaskHandler) DownloadAttachment(c *gin.Context) {
	id := c.Param("attachment_id")
	if id == "" {
		BadRequest(c, "Attachment ID is required")
		return
	}

	reader, fileName, err := h.svc.DownloadAttachment(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "attachment; filename="+path.Base(fileName))
	c.Header("Content-Type", "application/octet-stream")

	io.Copy(c.Writer, reader)
}

// DeleteAttachment removes a task attachment and its stored file.
func (h *TaskHandler) DeleteAttachment(c *gin.Context) {
	id := c.Param("attachment_id")
	if id == "" {
		BadRequest(c, "Attachment ID is required")
		return
	}

	if err := h.svc.DeleteAttachment(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// AddLinkRequest points a task at a related record.
type AddLinkRequest struct {
	ModelPath string `json:"model_path" binding:"required"`
}

// AddLink attaches a related-record reference to a task.
func (h *TaskHandler) AddLink(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Task ID is required")
		return
	}

	var req AddLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.svc.AddLink(c.Request.Context(), id, req.ModelPath)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, link)
}

// DeleteLink removes a related-record reference.
func (h *TaskHandler) DeleteLink(c *gin.Context) {
	id := c.Param("link_id")
	if id == "" {
		BadRequest(c, "Link ID is required")
		return
	}

	if err := h.svc.DeleteLink(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}
