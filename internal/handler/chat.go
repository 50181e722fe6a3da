package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voxprompt/internal/model"
	"voxprompt/internal/service"
)

// Completer is the service surface the chat handler depends on.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatHandler exposes the chat-completion proxy endpoint.
type ChatHandler struct {
	chatSvc Completer
}

func NewChatHandler(chatSvc Completer) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// Chat handles POST /api/chat.
// Request: { "prompt": "..." }
// Response: 200 {"message": ...}; failures map to 400, 429 or 500.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "Prompt is required",
		})
		return
	}

	message, err := h.chatSvc.Complete(c.Request.Context(), req.Prompt)
	if err != nil {
		var upstream *service.UpstreamError
		switch {
		case errors.Is(err, service.ErrPromptRequired):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error: "Prompt is required",
			})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error: "Rate limit exceeded",
			})
		case errors.As(err, &upstream):
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:   "Failed to fetch response from upstream",
				Details: upstream.Detail,
			})
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{
				Error: "Failed to fetch response from upstream",
			})
		}
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{Message: message})
}
