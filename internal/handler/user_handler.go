package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/service"
)

// UserHandler serves user administration.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List returns a page of users.
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword":   c.Query("keyword"),
		"is_active": c.Query("is_active"),
	}

	users, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(users, page, pageSize, total))
}

// Create registers a new user.
func (h *UserHandler) Create(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, user)
}

// Get returns one user.
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "User ID is required")
		return
	}

	user, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, user)
}

// Update applies a partial user update.
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "User ID is required")
		return
	}

	var in service.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Update(c.Request.Context(), id, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, user)
}

// Delete removes a user and their role assignments.
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "User ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// ListRoles returns all known roles.
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.svc.Roles(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, roles)
}

// AssignRoleRequest names a role to grant.
type AssignRoleRequest struct {
	Role        string `json:"role" binding:"required"`
	Description string `json:"description"`
}

// AssignRole grants a role to a user.
func (h *UserHandler) AssignRole(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "User ID is required")
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.AssignRole(c.Request.Context(), id, req.Role, req.Description); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// RemoveRole revokes a role from a user.
func (h *UserHandler) RemoveRole(c *gin.Context) {
	id := c.Param("id")
	role := c.Param("role")
	if id == "" || role == "" {
		BadRequest(c, "User ID and role are required")
		return
	}

	if err := h.svc.RemoveRole(c.Request.Context(), id, role); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}
