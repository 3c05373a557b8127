package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/edu_go_server/internal/model/dto"
	"github.com/qs3c/edu_go_server/internal/pkg/response"
	"github.com/qs3c/edu_go_server/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat AI 答疑
// POST /api/v1/ai/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body")
		return
	}

	resp, err := h.chatService.Ask(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			response.ParamError(c, "message is required")
		case errors.Is(err, service.ErrChatFailed):
			log.Printf("AI chat failed: %v", err)
			response.Error(c, response.CodeGenerationFailed, "failed to get AI response")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
