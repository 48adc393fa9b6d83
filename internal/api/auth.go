package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspress/newsroom/internal/service"
)

// AuthHandler exposes admin authentication endpoints
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Setup activates an allowlisted admin account with its first password
func (h *AuthHandler) Setup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	result, err := h.auth.Setup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// Me returns the authenticated admin's profile
func (h *AuthHandler) Me(c *gin.Context) {
	admin, err := h.auth.Profile(c.Request.Context(), adminID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, admin)
}
