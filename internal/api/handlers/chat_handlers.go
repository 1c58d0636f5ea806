package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/domain/services/chat"
	"github.com/wealth-one/wealth_service/pkg/logger"
)

// ChatHandler serves the portfolio assistant.
type ChatHandler struct {
	chat   *chat.Service
	logger *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.Service, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chatService,
		logger: logger,
	}
}

// Ask answers a free-text question about the user's portfolio.
// POST /api/v1/chat
func (h *ChatHandler) Ask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req entities.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "prompt is required")
		return
	}

	resp, err := h.chat.Ask(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		h.logger.Errorw("Chat request failed", "error", err, "user_id", userID, "request_id", getRequestID(c))
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
