package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/middleware"
	"github.com/alex-1-tech/assemcloud/internal/service"
)

// AuthHandler serves login, token refresh and logout.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, tokenPair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{
		"access_token":  tokenPair.AccessToken,
		"refresh_token": tokenPair.RefreshToken,
		"expires_in":    tokenPair.ExpiresIn,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.FullName(),
			"email": user.Email,
			"roles": user.RoleNames(),
		},
	})
}

// RefreshTokenRequest carries the refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	tokenPair, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	Success(c, gin.H{
		"access_token":  tokenPair.AccessToken,
		"refresh_token": tokenPair.RefreshToken,
		"expires_in":    tokenPair.ExpiresIn,
	})
}

// GetCurrentUser returns the authenticated user's profile.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.svc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		NotFound(c, "User not found")
		return
	}

	Success(c, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"phone":      user.Phone,
		"is_active":  user.IsActive,
		"roles":      user.RoleNames(),
		"created_at": user.CreatedAt,
	})
}

// Logout blacklists the current access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw, ok := c.Get("claims")
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	claims, ok := raw.(*middleware.JWTClaims)
	if !ok || claims.ID == "" || claims.ExpiresAt == nil {
		Unauthorized(c, "Invalid token claims")
		return
	}

	if err := h.svc.Logout(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		InternalError(c, "Failed to logout")
		return
	}

	Success(c, nil)
}
