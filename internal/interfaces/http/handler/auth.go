package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gtfsreview/backend/internal/infrastructure/auth"
	"github.com/gtfsreview/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles admin login and logout
type AuthHandler struct {
	BaseHandler
	authenticator *auth.AdminAuthenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authenticator *auth.AdminAuthenticator) *AuthHandler {
	return &AuthHandler{authenticator: authenticator}
}

// LoginRequest holds the admin credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse carries the admin's access token
type LoginResponse struct {
	Token    *auth.AccessToken `json:"token"`
	Username string            `json:"username"`
}

// Login godoc
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	token, err := h.authenticator.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LoginResponse{Token: token, Username: req.Username})
}

// Logout godoc
// @Summary      Revoke the admin's token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetAdminClaims(c)
	if claims == nil {
		h.NoContent(c)
		return
	}
	if err := h.authenticator.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
