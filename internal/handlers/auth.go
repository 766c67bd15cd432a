// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	session     config.SessionConfig
}

func NewAuthHandler(authService *services.AuthService, session config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		session:     session,
	}
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, authResponse.AccessToken, authResponse.CookieMaxAge, "/", "", h.session.Secure, true)

	utils.SuccessResponse(c, gin.H{
		"message":    utils.T(c, i18n.KeyAuthLoginSuccess),
		"user":       authResponse.User,
		"token":      authResponse.AccessToken,
		"token_type": authResponse.TokenType,
		"expires_at": authResponse.ExpiresAt,
	})
}

// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.Secure, true)

	utils.SuccessResponse(c, gin.H{
		"message": utils.T(c, i18n.KeyAuthLogoutSuccess),
	})
}

// GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := authorize(c, auth.CapBrowse)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}
