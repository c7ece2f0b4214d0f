// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/session"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	registry *session.Registry
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(registry *session.Registry) *AuthHandler {
	return &AuthHandler{registry: registry}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := sess.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := response.Message
	if message == "" {
		message = "User registered successfully, check your email to verify your account"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"data":    gin.H{"user": response.User},
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	u, err := sess.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data": gin.H{
			"user": u,
			"cart": sess.Cart.Snapshot(),
		},
	})
}

// VerifyEmail handles POST /auth/verify/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	u, err := sess.Auth.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"data":    gin.H{"user": u},
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	if err := sess.Auth.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.registry.Remove(sess.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
	})
}

// GetProfile handles GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"authenticated": sess.Auth.IsAuthenticated(),
			"user":          sess.Auth.User(),
		},
	})
}

// ForgotPassword handles POST /auth/password/forgot
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	var req user.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := sess.Auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If the email exists, a password reset link has been sent",
	})
}

// ResetPassword handles POST /auth/password/reset/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	var req user.NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := sess.Auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully",
	})
}
