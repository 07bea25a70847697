package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aryansondharva/Aura/internal/http/response"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

type TopicHandler struct {
	log    *logger.Logger
	topics services.TopicService
}

func NewTopicHandler(log *logger.Logger, topics services.TopicService) *TopicHandler {
	return &TopicHandler{log: log.With("handler", "TopicHandler"), topics: topics}
}

func (h *TopicHandler) List(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	rows, err := h.topics.List(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": rows})
}

func (h *TopicHandler) Get(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "topic")
	if !ok {
		return
	}
	t, err := h.topics.Get(c.Request.Context(), rd.UserID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topic": t})
}
