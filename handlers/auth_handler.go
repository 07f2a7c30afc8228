package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ytquiz/middleware"
	"ytquiz/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *services.AuthService
	cookieSecure bool
}

func NewAuthHandler(authService *services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if _, err := h.authService.Register(&req); err != nil {
		if errors.Is(err, services.ErrUserExists) || errors.Is(err, services.ErrInvalidUser) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		slog.Error("register failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"detail": "User created successfully!"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, tokens, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials."})
			return
		}
		slog.Error("login failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	h.setCookie(c, middleware.AccessCookie, tokens.Access, tokens.AccessTTL)
	h.setCookie(c, middleware.RefreshCookie, tokens.Refresh, tokens.RefreshTTL)

	c.JSON(http.StatusOK, gin.H{
		"detail": "Login successfully!",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, _ := c.Cookie(middleware.RefreshCookie)
	if err := h.authService.Logout(c.Request.Context(), refresh); err != nil {
		slog.Warn("refresh token revocation failed", slog.Any("error", err))
	}

	h.setCookie(c, middleware.AccessCookie, "", -1)
	h.setCookie(c, middleware.RefreshCookie, "", -1)

	c.JSON(http.StatusOK, gin.H{"detail": "Log-Out successfully! All Tokens will be deleted. Refresh token is now invalid."})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refresh, err := c.Cookie(middleware.RefreshCookie)
	if err != nil || refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing refresh token."})
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid refresh token."})
			return
		}
		slog.Error("token refresh failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	h.setCookie(c, middleware.AccessCookie, access, h.authService.AccessTTL())
	c.JSON(http.StatusOK, gin.H{"detail": "Token refreshed", "access": access})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found."})
		return
	}

	c.JSON(http.StatusOK, user)
}

// setCookie writes an HttpOnly cookie; a negative ttl deletes it.
func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cookieSecure, true)
}
