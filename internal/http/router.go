package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/aryansondharva/Aura/internal/http/handlers"
	httpMW "github.com/aryansondharva/Aura/internal/http/middleware"
	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	DocumentHandler *httpH.DocumentHandler
	TopicHandler    *httpH.TopicHandler
	QuizHandler     *httpH.QuizHandler
	AttemptHandler  *httpH.AttemptHandler
	ReviewHandler   *httpH.ReviewHandler
	ChatHandler     *httpH.ChatHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(cfg.Metrics.GinMiddleware())
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	} else {
		api.Use(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "auth not configured", "code": "unauthorized"}})
		})
	}
	{
		// Documents
		if cfg.DocumentHandler != nil {
			api.POST("/documents/chat", cfg.DocumentHandler.UploadChat)
			api.POST("/documents/topics", cfg.DocumentHandler.UploadTopics)
		}

		// Topics
		if cfg.TopicHandler != nil {
			api.GET("/topics", cfg.TopicHandler.List)
			api.GET("/topics/:id", cfg.TopicHandler.Get)
		}

		// Quiz
		if cfg.QuizHandler != nil {
			api.POST("/topics/:id/quiz", cfg.QuizHandler.Generate)
			api.GET("/topics/:id/flashcards", cfg.QuizHandler.Flashcards)
		}

		// Attempts
		if cfg.AttemptHandler != nil {
			api.POST("/topics/:id/attempts", cfg.AttemptHandler.Submit)
			api.GET("/topics/:id/attempts", cfg.AttemptHandler.List)
		}

		// Reviews
		if cfg.ReviewHandler != nil {
			api.GET("/reviews", cfg.ReviewHandler.Schedule)
			api.POST("/reviews/sweep", cfg.ReviewHandler.Sweep)
			api.GET("/predict", cfg.ReviewHandler.Predict)
		}

		// Chat
		if cfg.ChatHandler != nil {
			api.POST("/chat/:session_id/messages", cfg.ChatHandler.Send)
			api.GET("/chat/:session_id/messages", cfg.ChatHandler.History)
		}
	}

	return r
}
