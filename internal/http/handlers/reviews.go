package handlers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aryansondharva/Aura/internal/http/response"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

type ReviewHandler struct {
	log     *logger.Logger
	reviews services.ReviewService
}

func NewReviewHandler(log *logger.Logger, reviews services.ReviewService) *ReviewHandler {
	return &ReviewHandler{log: log.With("handler", "ReviewHandler"), reviews: reviews}
}

// Schedule handles GET /api/reviews.
func (h *ReviewHandler) Schedule(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.reviews.Schedule(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reviews": items})
}

// Sweep handles POST /api/reviews/sweep.
func (h *ReviewHandler) Sweep(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.reviews.Sweep(c.Request.Context(), rd.UserID, rd.Email)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reset_topics": out.ResetTopicIDs, "zeroed_attempts": out.ZeroedAttempts})
}

// Predict handles GET /api/predict. Unparseable numbers are treated as missing, never as a 4xx.
func (h *ReviewHandler) Predict(c *gin.Context) {
	days := h.reviews.Predict(
		queryFloat(c, "latest"),
		queryFloat(c, "avg"),
		queryFloat(c, "attempts"),
		queryFloat(c, "days"),
	)
	response.RespondOK(c, gin.H{"days": days})
}

func queryFloat(c *gin.Context, name string) float64 {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
