package learning

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type TopicRepo interface {
	Create(dbc dbctx.Context, rows []*types.Topic) ([]*types.Topic, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Topic, error)
	GetByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Topic, error)
	GetByOwnerAndSourceHash(dbc dbctx.Context, ownerID uuid.UUID, sourceHash string) ([]*types.Topic, error)
	UpdateStatus(dbc dbctx.Context, ids []uuid.UUID, status string) error
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) Create(dbc dbctx.Context, rows []*types.Topic) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Topic{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *topicRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Topic, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *topicRepo) GetByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, cluster_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) GetByOwnerAndSourceHash(dbc dbctx.Context, ownerID uuid.UUID, sourceHash string) ([]*types.Topic, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Topic
	if ownerID == uuid.Nil || sourceHash == "" {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ? AND source_file_hash = ?", ownerID, sourceHash).
		Order("cluster_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicRepo) UpdateStatus(dbc dbctx.Context, ids []uuid.UUID, status string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	if !types.ValidTopicStatus(status) {
		return fmt.Errorf("invalid topic status %q", status)
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Topic{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}
