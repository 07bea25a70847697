package app

import (
	"github.com/aryansondharva/Aura/internal/modules/conversation"
	"github.com/aryansondharva/Aura/internal/modules/scheduler"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/services"
)

type Services struct {
	Notifier  services.Notifier
	Ingestion services.IngestionService
	Topic     services.TopicService
	Quiz      services.QuizService
	Progress  services.ProgressService
	Review    services.ReviewService
	Chat      services.ChatService
}

func wireServices(log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	predictor := scheduler.NewPredictor(log, cfg.SchedulerModelPath)
	notifier := services.NewNotifier(log, c.Mailer)

	var store conversation.Store
	if c.Redis != nil {
		store = conversation.NewRedisStore(log, c.Redis, cfg.ChatSessionTTL)
	} else {
		store = conversation.NewMemoryStore(log, cfg.ChatSessionCapacity, cfg.ChatSessionTTL)
	}

	return Services{
		Notifier: notifier,
		Ingestion: services.NewIngestionService(log, r.SourceFile, r.Chunk, r.Topic, c.Embedder, c.Generator, c.Vectors, services.IngestionConfig{
			MaxBytes:            cfg.UploadMaxBytes,
			ClusterThreshold:    cfg.ClusterThreshold,
			TitlePromptMaxChars: cfg.TopicPromptMaxChars,
		}),
		Topic:    services.NewTopicService(log, r.Topic),
		Quiz:     services.NewQuizService(log, c.Generator, r.Topic, r.Question, r.Attempt, cfg.QuizPromptMaxChars),
		Progress: services.NewProgressService(log, r.Topic, r.Question, r.Attempt, r.ReviewFeature, predictor, notifier),
		Review:   services.NewReviewService(log, r.Topic, r.Attempt, r.ReviewFeature, predictor, notifier),
		Chat:     services.NewChatService(log, c.Generator, c.Embedder, c.Vectors, r.Chunk, store, cfg.RetrievalTopK),
	}
}
