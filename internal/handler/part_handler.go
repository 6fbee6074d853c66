package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// PartHandler serves atomic parts.
type PartHandler struct {
	svc *service.PartService
}

func NewPartHandler(svc *service.PartService) *PartHandler {
	return &PartHandler{svc: svc}
}

// List returns a page of parts.
func (h *PartHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword":  c.Query("keyword"),
		"material": c.Query("material"),
	}

	parts, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(parts, page, pageSize, total))
}

// Create registers a part.
func (h *PartHandler) Create(c *gin.Context) {
	var in service.PartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	part, err := h.svc.Create(c.Request.Context(), in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, part)
}

// Get returns one part.
func (h *PartHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Part ID is required")
		return
	}

	part, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, part)
}

// Update modifies a part.
func (h *PartHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Part ID is required")
		return
	}

	var in service.PartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	part, err := h.svc.Update(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, part)
}

// Delete removes a part and its module links.
func (h *PartHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Part ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}
