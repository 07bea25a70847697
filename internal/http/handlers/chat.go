package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aryansondharva/Aura/internal/http/response"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(log *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: chat}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Send handles POST /api/chat/:session_id/messages.
func (h *ChatHandler) Send(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest(err))
		return
	}
	reply, err := h.chat.Ask(c.Request.Context(), rd.UserID, c.Param("session_id"), req.Message)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reply": reply})
}

// History handles GET /api/chat/:session_id/messages.
func (h *ChatHandler) History(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	msgs, err := h.chat.History(c.Request.Context(), rd.UserID, c.Param("session_id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}
