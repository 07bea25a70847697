package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/http/response"
	"github.com/aryansondharva/Aura/internal/modules/progress"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

type AttemptHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewAttemptHandler(log *logger.Logger, progress services.ProgressService) *AttemptHandler {
	return &AttemptHandler{log: log.With("handler", "AttemptHandler"), progress: progress}
}

type submitAnswer struct {
	QuestionID     string `json:"question_id" binding:"required"`
	SelectedOption string `json:"selected_option"`
}

type submitRequest struct {
	Answers []submitAnswer `json:"answers" binding:"required"`
}

type submitResponse struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	Score          float64   `json:"score"`
	Status         string    `json:"status"`
	Mastered       bool      `json:"mastered"`
	NextReviewDays int       `json:"next_review_days"`
	NextReviewDate string    `json:"next_review_date"`
}

// Submit handles POST /api/topics/:id/attempts.
func (h *AttemptHandler) Submit(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "id", "topic")
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest(err))
		return
	}
	responses := make([]progress.Response, 0, len(req.Answers))
	for i, a := range req.Answers {
		qid, err := uuid.Parse(a.QuestionID)
		if err != nil {
			response.RespondAPIError(c, apierr.BadRequest(fmt.Errorf("answers[%d].question_id: %w", i, err)))
			return
		}
		responses = append(responses, progress.Response{QuestionID: qid, SelectedOption: a.SelectedOption})
	}
	out, err := h.progress.Submit(c.Request.Context(), services.SubmitRequest{
		OwnerID:   rd.UserID,
		Email:     rd.Email,
		TopicID:   topicID,
		Responses: responses,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, submitResponse{
		AttemptID:      out.Attempt.ID,
		Score:          out.Score,
		Status:         out.Status,
		Mastered:       out.Mastered,
		NextReviewDays: out.NextReviewDays,
		NextReviewDate: out.NextReviewDate.Format(time.DateOnly),
	})
}

// List handles GET /api/topics/:id/attempts.
func (h *AttemptHandler) List(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "id", "topic")
	if !ok {
		return
	}
	rows, err := h.progress.ListAttempts(c.Request.Context(), rd.UserID, topicID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": rows})
}
