package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wealth-one/wealth_service/internal/api/middleware"
	"github.com/wealth-one/wealth_service/internal/domain/entities"
	apperrors "github.com/wealth-one/wealth_service/pkg/errors"
)

// getUserID extracts and validates user ID from context
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDVal, exists := c.Get(middleware.ContextKeyUserID)
	if !exists {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	switch v := userIDVal.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("invalid user ID type in context")
	}
}

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.ContextKeyRequestID)
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code apperrors.ErrorCode, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    string(code),
		Message: message,
		Details: details,
	})
}

// respondAppError maps an error to the standard envelope. Application errors
// carry their own status and code; anything else is a 500.
func respondAppError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		respondError(c, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	respondError(c, http.StatusInternalServerError, apperrors.ErrCodeInternal, "internal server error", nil)
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, apperrors.ErrCodeValidation, message, nil)
}

// respondUnauthorized sends an unauthorized error
func respondUnauthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, message, nil)
}
