package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type TopicService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]*types.Topic, error)
	Get(ctx context.Context, ownerID, topicID uuid.UUID) (*types.Topic, error)
}

type topicService struct {
	log    *logger.Logger
	topics repos.TopicRepo
}

func NewTopicService(baseLog *logger.Logger, topics repos.TopicRepo) TopicService {
	return &topicService{log: baseLog.With("service", "TopicService"), topics: topics}
}

func (s *topicService) List(ctx context.Context, ownerID uuid.UUID) ([]*types.Topic, error) {
	rows, err := s.topics.GetByOwner(dbctx.Context{Ctx: ctx}, ownerID)
	if err != nil {
		s.log.Error("list topics failed", "owner_id", ownerID, "error", err)
		return nil, apierr.Internal(err)
	}
	if rows == nil {
		rows = []*types.Topic{}
	}
	return rows, nil
}

func (s *topicService) Get(ctx context.Context, ownerID, topicID uuid.UUID) (*types.Topic, error) {
	return ownedTopic(ctx, s.log, s.topics, ownerID, topicID)
}

// ownedTopic loads a topic and hides topics of other owners behind a 404.
func ownedTopic(ctx context.Context, log *logger.Logger, topics repos.TopicRepo, ownerID, topicID uuid.UUID) (*types.Topic, error) {
	if topicID == uuid.Nil {
		return nil, apierr.NotFound("topic")
	}
	t, err := topics.GetByID(dbctx.Context{Ctx: ctx}, topicID)
	if err != nil {
		log.Error("load topic failed", "topic_id", topicID, "error", err)
		return nil, apierr.Internal(err)
	}
	if t == nil || t.OwnerID != ownerID {
		return nil, apierr.NotFound("topic")
	}
	return t, nil
}
