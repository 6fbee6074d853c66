package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// ClientHandler serves clients and manufacturers.
type ClientHandler struct {
	svc *service.ClientService
}

func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// List returns a page of clients.
func (h *ClientHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
		"country": c.Query("country"),
	}

	clients, total, err := h.svc.ListClients(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(clients, page, pageSize, total))
}

// Create registers a client company.
func (h *ClientHandler) Create(c *gin.Context) {
	var in service.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.svc.CreateClient(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, client)
}

// Get returns one client.
func (h *ClientHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Client ID is required")
		return
	}

	client, err := h.svc.GetClient(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, client)
}

// Update modifies a client.
func (h *ClientHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Client ID is required")
		return
	}

	var in service.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.svc.UpdateClient(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, client)
}

// Delete removes a client.
func (h *ClientHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Client ID is required")
		return
	}

	if err := h.svc.DeleteClient(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// ListManufacturers returns a page of manufacturers.
func (h *ClientHandler) ListManufacturers(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
		"country": c.Query("country"),
	}

	manufacturers, total, err := h.svc.ListManufacturers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(manufacturers, page, pageSize, total))
}

// CreateManufacturer registers a manufacturer.
func (h *ClientHandler) CreateManufacturer(c *gin.Context) {
	var in service.ManufacturerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	m, err := h.svc.CreateManufacturer(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, m)
}

// GetManufacturer returns one manufacturer.
func (h *ClientHandler) GetManufacturer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Manufacturer ID is required")
		return
	}

	m, err := h.svc.GetManufacturer(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, m)
}

// UpdateManufacturer modifies a manufacturer.
func (h *ClientHandler) UpdateManufacturer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Manufacturer ID is required")
		return
	}

	var in service.ManufacturerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	m, err := h.svc.UpdateManufacturer(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, m)
}

// DeleteManufacturer removes a manufacturer.
func (h *ClientHandler) DeleteManufacturer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Manufacturer ID is required")
		return
	}

	if err := h.svc.DeleteManufacturer(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}
