package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type AttemptRepo interface {
	// Create inserts the attempt together with its Answers in one statement group.
	Create(dbc dbctx.Context, attempt *types.Attempt) (*types.Attempt, error)
	GetLatest(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) (*types.Attempt, error)
	GetLatestWithAnswers(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) (*types.Attempt, error)
	ListByTopic(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) ([]*types.Attempt, error)
	UpdateScore(dbc dbctx.Context, id uuid.UUID, score float64) error
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{db: db, log: baseLog.With("repo", "AttemptRepo")}
}

func (r *attemptRepo) Create(dbc dbctx.Context, attempt *types.Attempt) (*types.Attempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if attempt == nil {
		return nil, errors.New("attempt required")
	}
	if attempt.SubmittedAt.IsZero() {
		attempt.SubmittedAt = time.Now().UTC()
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	for _, a := range attempt.Answers {
		if a != nil {
			a.AttemptID = attempt.ID
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *attemptRepo) latest(dbc dbctx.Context, ownerID, topicID uuid.UUID, withAnswers bool) (*types.Attempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if ownerID == uuid.Nil || topicID == uuid.Nil {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx).
		Where("owner_id = ? AND topic_id = ?", ownerID, topicID).
		Order("submitted_at DESC, created_at DESC")
	if withAnswers {
		q = q.Preload("Answers")
	}
	var out types.Attempt
	err := q.Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *attemptRepo) GetLatest(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) (*types.Attempt, error) {
	return r.latest(dbc, ownerID, topicID, false)
}

func (r *attemptRepo) GetLatestWithAnswers(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) (*types.Attempt, error) {
	return r.latest(dbc, ownerID, topicID, true)
}

func (r *attemptRepo) ListByTopic(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) ([]*types.Attempt, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Attempt
	if ownerID == uuid.Nil || topicID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ? AND topic_id = ?", ownerID, topicID).
		Order("submitted_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attemptRepo) UpdateScore(dbc dbctx.Context, id uuid.UUID, score float64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Attempt{}).
		Where("id = ?", id).
		Update("score", score).Error
}
