package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/modules/progress"
	"github.com/aryansondharva/Aura/internal/modules/scheduler"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type SubmitRequest struct {
	OwnerID   uuid.UUID
	Email     string
	TopicID   uuid.UUID
	Responses []progress.Response
}

type ProgressService interface {
	Submit(ctx context.Context, req SubmitRequest) (*progress.SubmitOutput, error)
	ListAttempts(ctx context.Context, ownerID, topicID uuid.UUID) ([]*types.Attempt, error)
}

type progressService struct {
	log       *logger.Logger
	topics    repos.TopicRepo
	questions repos.QuestionRepo
	attempts  repos.AttemptRepo
	reviews   repos.ReviewFeatureRepo
	predictor scheduler.Predictor
	notify    Notifier
}

func NewProgressService(
	baseLog *logger.Logger,
	topics repos.TopicRepo,
	questions repos.QuestionRepo,
	attempts repos.AttemptRepo,
	reviews repos.ReviewFeatureRepo,
	predictor scheduler.Predictor,
	notify Notifier,
) ProgressService {
	return &progressService{
		log:       baseLog.With("service", "ProgressService"),
		topics:    topics,
		questions: questions,
		attempts:  attempts,
		reviews:   reviews,
		predictor: predictor,
		notify:    notify,
	}
}

func (s *progressService) Submit(ctx context.Context, req SubmitRequest) (*progress.SubmitOutput, error) {
	topic, err := ownedTopic(ctx, s.log, s.topics, req.OwnerID, req.TopicID)
	if err != nil {
		return nil, err
	}
	if len(req.Responses) == 0 {
		return nil, apierr.BadRequest(fmt.Errorf("no answers submitted"))
	}
	out, err := progress.Submit(ctx, progress.SubmitDeps{
		Log:       s.log,
		Topics:    s.topics,
		Questions: s.questions,
		Attempts:  s.attempts,
		Reviews:   s.reviews,
		Predictor: s.predictor,
	}, progress.SubmitInput{
		OwnerID:   req.OwnerID,
		TopicID:   req.TopicID,
		Responses: req.Responses,
	})
	if errors.Is(err, progress.ErrNoGradedAnswers) {
		return nil, apierr.BadRequest(err)
	}
	if err != nil {
		s.log.Error("submit attempt failed", "topic_id", req.TopicID, "error", err)
		return nil, apierr.Internal(err)
	}
	if s.notify != nil {
		subject, body := quizResultEmail(topic.Title, out.Score, out.Status, out.NextReviewDate)
		s.notify.SendAsync(req.Email, subject, body)
	}
	return &out, nil
}

func (s *progressService) ListAttempts(ctx context.Context, ownerID, topicID uuid.UUID) ([]*types.Attempt, error) {
	if _, err := ownedTopic(ctx, s.log, s.topics, ownerID, topicID); err != nil {
		return nil, err
	}
	rows, err := s.attempts.ListByTopic(dbctx.Context{Ctx: ctx}, ownerID, topicID)
	if err != nil {
		s.log.Error("list attempts failed", "topic_id", topicID, "error", err)
		return nil, apierr.Internal(err)
	}
	if rows == nil {
		rows = []*types.Attempt{}
	}
	return rows, nil
}
