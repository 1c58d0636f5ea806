package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/domain/services/users"
	"github.com/wealth-one/wealth_service/pkg/logger"
)

// AuthHandler handles registration, login and profile endpoints.
type AuthHandler struct {
	users  *users.Service
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *users.Service, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger,
	}
}

// Register creates a new account.
// POST /auth/v1/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req entities.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid registration payload: "+err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"message":  "registration successful",
	})
}

// Login verifies credentials and returns a bearer token.
// POST /auth/v1/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req entities.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	token, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, entities.LoginResponse{
		Token:   token,
		Message: "login successful",
	})
}

// Logout acknowledges the logout. Tokens are stateless; the client discards
// the token and it simply ages out.
// POST /auth/v1/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GetProfile returns the authenticated user's profile.
// GET /api/v1/users/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	profile, err := h.users.Profile(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
