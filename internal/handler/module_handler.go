package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// ModuleHandler serves modules, their part lists and the assembly
// links that place modules inside machines.
type ModuleHandler struct {
	svc      *service.ModuleService
	assembly *service.AssemblyService
	importer *service.ImportService
}

func NewModuleHandler(svc *service.ModuleService, assembly *service.AssemblyService, importer *service.ImportService) *ModuleHandler {
	return &ModuleHandler{svc: svc, assembly: assembly, importer: importer}
}

// List returns a page of modules.
func (h *ModuleHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
		"status":  c.Query("status"),
	}

	modules, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(modules, page, pageSize, total))
}

// Create registers a module.
func (h *ModuleHandler) Create(c *gin.Context) {
	var in service.ModuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	module, err := h.svc.Create(c.Request.Context(), in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, module)
}

// Get returns one module with its parts.
func (h *ModuleHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Module ID is required")
		return
	}

	module, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, module)
}

// Update modifies a module.
func (h *ModuleHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Module ID is required")
		return
	}

	var in service.ModuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	module, err := h.svc.Update(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, module)
}

// Delete removes a module.
func (h *ModuleHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Module ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// AddPart attaches a part to a module, summing quantity on repeat.
func (h *ModuleHandler) AddPart(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Module ID is required")
		return
	}

	var in service.ModulePartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.svc.AddPart(c.Request.Context(), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, link)
}

// UpdatePartRequest sets the per-module quantity of a part.
type UpdatePartRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdatePart changes the quantity of a part within a module.
func (h *ModuleHandler) UpdatePart(c *gin.Context) {
	id := c.Param("id")
	partID := c.Param("part_id")
	if id == "" || partID == "" {
		BadRequest(c, "Module ID and part ID are required")
		return
	}

	var req UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.svc.UpdatePart(c.Request.Context(), id, partID, req.Quantity)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, link)
}

// RemovePart detaches a part from a module.
func (h *ModuleHandler) RemovePart(c *gin.Context) {
	id := c.Param("id")
	partID := c.Param("part_id")
	if id == "" || partID == "" {
		BadRequest(c, "Module ID and part ID are required")
		return
	}

	if err := h.svc.RemovePart(c.Request.Context(), id, partID); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// ListParts returns the parts attached to a module.
func (h *ModuleHandler) ListParts(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Module ID is required")
		return
	}

	parts, err := h.svc.ListParts(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, parts)
}

// CreateLink places a module into a machine's assembly hierarchy.
func (h *ModuleHandler) CreateLink(c *gin.Context) {
	var in service.LinkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.assembly.CreateLink(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, link)
}

// UpdateLinkRequest moves a link or changes its quantity.
type UpdateLinkRequest struct {
	ParentID *string `json:"parent_id"`
	Quantity int     `json:"quantity"`
}

// UpdateLink reparents an assembly link or changes its quantity.
func (h *ModuleHandler) UpdateLink(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Link ID is required")
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.assembly.UpdateLink(c.Request.Context(), id, req.ParentID, req.Quantity)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, link)
}

// DeleteLink removes an assembly link, reparenting its children.
func (h *ModuleHandler) DeleteLink(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Link ID is required")
		return
	}

	if err := h.assembly.DeleteLink(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// Subtree returns the assembly subtree rooted at one link.
func (h *ModuleHandler) Subtree(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Link ID is required")
		return
	}

	node, err := h.assembly.ModuleSubtree(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, node)
}

// ImportBOM ingests a module-level BOM file under an assembly link.
func (h *ModuleHandler) ImportBOM(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Link ID is required")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "BOM file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "Failed to open uploaded file")
		return
	}
	defer src.Close()

	result, err := h.importer.ImportModuleBOM(c.Request.Context(), id, file.Filename, src)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, result)
}
