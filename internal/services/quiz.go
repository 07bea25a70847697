package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/aryansondharva/Aura/internal/data/repos"
	"github.com/aryansondharva/Aura/internal/modules/ai"
	"github.com/aryansondharva/Aura/internal/modules/quiz"
	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type QuizService interface {
	Generate(ctx context.Context, ownerID, topicID uuid.UUID, difficulty string) (*quiz.GenerateOutput, error)
	Flashcards(ctx context.Context, ownerID, topicID uuid.UUID, limit int) ([]quiz.Flashcard, error)
}

type quizService struct {
	log            *logger.Logger
	gen            ai.TextGenerator
	topics         repos.TopicRepo
	questions      repos.QuestionRepo
	attempts       repos.AttemptRepo
	promptMaxChars int
}

func NewQuizService(
	baseLog *logger.Logger,
	gen ai.TextGenerator,
	topics repos.TopicRepo,
	questions repos.QuestionRepo,
	attempts repos.AttemptRepo,
	promptMaxChars int,
) QuizService {
	return &quizService{
		log:            baseLog.With("service", "QuizService"),
		gen:            gen,
		topics:         topics,
		questions:      questions,
		attempts:       attempts,
		promptMaxChars: promptMaxChars,
	}
}

func (s *quizService) Generate(ctx context.Context, ownerID, topicID uuid.UUID, difficulty string) (_ *quiz.GenerateOutput, err error) {
	ctx, span := observability.StartSpan(ctx, "quiz.generate", attribute.String("topic_id", topicID.String()))
	defer func() { observability.EndSpan(span, err) }()
	topic, err := ownedTopic(ctx, s.log, s.topics, ownerID, topicID)
	if err != nil {
		return nil, err
	}
	out, err := quiz.Generate(ctx, quiz.GenerateDeps{
		Log:       s.log,
		Gen:       s.gen,
		Questions: s.questions,
		Attempts:  s.attempts,
	}, quiz.GenerateInput{
		Topic:          topic,
		OwnerID:        ownerID,
		Difficulty:     difficulty,
		PromptMaxChars: s.promptMaxChars,
	})
	if err != nil {
		if errors.Is(err, ai.ErrServiceUnavailable) {
			return nil, apierr.Unavailable(ai.ErrServiceUnavailable)
		}
		s.log.Error("quiz generation failed", "topic_id", topicID, "error", err)
		return nil, apierr.Internal(err)
	}
	return &out, nil
}

func (s *quizService) Flashcards(ctx context.Context, ownerID, topicID uuid.UUID, limit int) ([]quiz.Flashcard, error) {
	if _, err := ownedTopic(ctx, s.log, s.topics, ownerID, topicID); err != nil {
		return nil, err
	}
	cards, err := quiz.Flashcards(ctx, quiz.FlashcardDeps{Questions: s.questions, Attempts: s.attempts}, quiz.FlashcardInput{
		OwnerID: ownerID,
		TopicID: topicID,
		Limit:   limit,
	})
	if err != nil {
		s.log.Error("flashcards failed", "topic_id", topicID, "error", err)
		return nil, apierr.Internal(err)
	}
	if cards == nil {
		cards = []quiz.Flashcard{}
	}
	return cards, nil
}
