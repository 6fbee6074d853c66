package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// MachineHandler serves machines, their clients, converters and
// the assembly tree rooted at a machine.
type MachineHandler struct {
	svc      *service.MachineService
	assembly *service.AssemblyService
	importer *service.ImportService
}

func NewMachineHandler(svc *service.MachineService, assembly *service.AssemblyService, importer *service.ImportService) *MachineHandler {
	return &MachineHandler{svc: svc, assembly: assembly, importer: importer}
}

// List returns a page of machines.
func (h *MachineHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
	}

	machines, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(machines, page, pageSize, total))
}

// Create registers a machine.
func (h *MachineHandler) Create(c *gin.Context) {
	var in service.MachineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	machine, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, machine)
}

// Get returns one machine.
func (h *MachineHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	machine, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, machine)
}

// Update modifies a machine.
func (h *MachineHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	var in service.MachineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	machine, err := h.svc.Update(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, machine)
}

// Delete removes a machine and its assembly links.
func (h *MachineHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// Tree returns the full assembly hierarchy of a machine.
func (h *MachineHandler) Tree(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	tree, err := h.assembly.MachineTree(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, tree)
}

// ImportBOM ingests a machine-level BOM file (xlsx or csv).
func (h *MachineHandler) ImportBOM(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
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

	result, err := h.importer.ImportMachineBOM(c.Request.Context(), id, file.Filename, src)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, result)
}

// AttachClientRequest links a client to a machine.
type AttachClientRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Comment  string `json:"comment"`
}

// AttachClient records that a client operates this machine.
func (h *MachineHandler) AttachClient(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	var req AttachClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.svc.AttachClient(c.Request.Context(), id, req.ClientID, req.Comment)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, link)
}

// DetachClient removes a machine-client link.
func (h *MachineHandler) DetachClient(c *gin.Context) {
	id := c.Param("id")
	clientID := c.Param("client_id")
	if id == "" || clientID == "" {
		BadRequest(c, "Machine ID and client ID are required")
		return
	}

	if err := h.svc.DetachClient(c.Request.Context(), id, clientID); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// ListClients returns the clients linked to a machine.
func (h *MachineHandler) ListClients(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	links, err := h.svc.ListClients(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, links)
}

// AddConverter registers a converter fitted to a machine.
func (h *MachineHandler) AddConverter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	var in service.ConverterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	converter, err := h.svc.AddConverter(c.Request.Context(), id, in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, converter)
}

// ListConverters returns the converters fitted to a machine.
func (h *MachineHandler) ListConverters(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Machine ID is required")
		return
	}

	converters, err := h.svc.ListConverters(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, converters)
}

// UpdateConverter modifies a converter.
func (h *MachineHandler) UpdateConverter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Converter ID is required")
		return
	}

	var in service.ConverterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	converter, err := h.svc.UpdateConverter(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, converter)
}

// DeleteConverter removes a converter.
func (h *MachineHandler) DeleteConverter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Converter ID is required")
		return
	}

	if err := h.svc.DeleteConverter(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}
