package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/auth"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/models"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/oidc"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/middleware"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the body of POST /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// UserLookup loads the profile returned by /auth/me.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthHandler holds dependencies
type AuthHandler struct {
	mgr     *auth.Manager
	users   UserLookup
	oauth   *oidc.Provider
	cookies CookiePolicy
}

// NewAuthHandler wires the auth routes. oauth may be nil when no provider is configured.
func NewAuthHandler(mgr *auth.Manager, users UserLookup, oauth *oidc.Provider, cookies CookiePolicy) *AuthHandler {
	return &AuthHandler{mgr: mgr, users: users, oauth: oauth, cookies: cookies}
}

// Register routes under /auth. The group must already run middleware.Authenticate.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
	a.POST("/refresh", h.Refresh)
	a.GET("/me", h.Me)
	a.POST("/change-password", middleware.RequireAuth(), h.ChangePassword)
	a.GET("/oauth/start", h.OAuthStart)
}

// Login checks credentials and sets the session cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "usernameOrEmail and password are required"})
		return
	}
	s, err := h.mgr.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		internalError(c, "login", err)
		return
	}
	h.cookies.setSession(c, s)
	c.JSON(http.StatusOK, gin.H{"user": s.User})
}

// Logout revokes the presented tokens and always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.mgr.Logout(c.Request.Context(), cookieValue(c, auth.RefreshCookieName), cookieValue(c, auth.AccessCookieName))
	h.cookies.clearSession(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Refresh rotates the refresh cookie and issues a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := cookieValue(c, auth.RefreshCookieName)
	if raw == "" {
		h.cookies.clearSession(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	s, err := h.mgr.Refresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			h.cookies.clearSession(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		internalError(c, "refresh", err)
		return
	}
	h.cookies.setSession(c, s)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the caller's profile, or null for anonymous callers.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	u, err := h.users.GetUserByID(c.Request.Context(), p.UserID)
	if err != nil {
		logger.Errorf("me: user lookup for %s failed: %v", p.UserID, err)
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

// ChangePassword replaces the caller's password after re-checking the current one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentPassword and newPassword are required"})
		return
	}
	var userID string
	if p := middleware.PrincipalFrom(c); p != nil {
		userID = p.UserID
	}
	s, err := h.mgr.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
		return
	case errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	case errors.Is(err, auth.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	default:
		internalError(c, "change-password", err)
		return
	}
	if s != nil {
		h.cookies.setSession(c, s)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// OAuthStart redirects the browser to the configured provider.
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "oauth is not configured"})
		return
	}
	state, err := oidc.NewState()
	if err != nil {
		internalError(c, "oauth start", err)
		return
	}
	h.cookies.setOAuthState(c, state)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

func internalError(c *gin.Context, op string, err error) {
	logger.Errorf("%s failed: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
