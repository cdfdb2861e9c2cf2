package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safehaven/backend/internal/auth"
	apierrors "github.com/safehaven/backend/internal/errors"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/metrics"
	"github.com/safehaven/backend/internal/util"
)

// Register creates a new account and returns a bearer token.
// POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "", "missing required fields")
		return
	}

	resp, err := h.auth.Register(req)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			util.RespondWithAPIError(c, apierrors.DuplicateEmail())
			return
		}
		logger.ErrorWithFields("Registration failed", err)
		util.RespondInternalError(c, "failed to register user")
		return
	}

	metrics.Get().RegistrationsTotal.Inc()
	c.JSON(http.StatusOK, resp)
}

// Login authenticates with email/password and returns a fresh bearer token.
// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "", "missing email or password")
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.Get().LoginsTotal.WithLabelValues("failure").Inc()
			util.RespondWithAPIError(c, apierrors.InvalidCredentials())
			return
		}
		logger.ErrorWithFields("Login failed", err)
		util.RespondInternalError(c, "failed to log in")
		return
	}

	metrics.Get().LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, resp)
}

// Me returns the profile named by the bearer token.
// GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// AuthMiddleware validates the bearer token and stores the acting user in the
// request context. Write endpoints derive identity from here, never from the
// request body.
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		user, err := h.auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}
