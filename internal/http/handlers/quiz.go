package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aryansondharva/Aura/internal/http/response"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

type QuizHandler struct {
	log  *logger.Logger
	quiz services.QuizService
}

func NewQuizHandler(log *logger.Logger, quiz services.QuizService) *QuizHandler {
	return &QuizHandler{log: log.With("handler", "QuizHandler"), quiz: quiz}
}

type generateQuizRequest struct {
	Difficulty string `json:"difficulty"`
}

// Generate handles POST /api/topics/:id/quiz. The body is optional; difficulty defaults to medium.
func (h *QuizHandler) Generate(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "id", "topic")
	if !ok {
		return
	}
	var req generateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondAPIError(c, apierr.BadRequest(err))
		return
	}
	out, err := h.quiz.Generate(c.Request.Context(), rd.UserID, topicID, req.Difficulty)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"questions":   out.Questions,
		"requested":   out.Requested,
		"retry_count": out.RetryCount,
		"generated":   out.Generated,
	})
}

// Flashcards handles GET /api/topics/:id/flashcards?limit=.
func (h *QuizHandler) Flashcards(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "id", "topic")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	cards, err := h.quiz.Flashcards(c.Request.Context(), rd.UserID, topicID, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flashcards": cards})
}
