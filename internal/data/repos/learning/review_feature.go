package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type ReviewFeatureRepo interface {
	GetByOwnerTopic(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) (*types.ReviewFeatureSet, error)
	Upsert(dbc dbctx.Context, row *types.ReviewFeatureSet) error
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.ReviewFeatureSet, error)
	// ListOverdue returns rows whose next review date is strictly before the cutoff.
	ListOverdue(dbc dbctx.Context, ownerID uuid.UUID, before time.Time) ([]*types.ReviewFeatureSet, error)
	ListOwnersWithOverdue(dbc dbctx.Context, before time.Time) ([]uuid.UUID, error)
}

type reviewFeatureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewFeatureRepo(db *gorm.DB, baseLog *logger.Logger) ReviewFeatureRepo {
	return &reviewFeatureRepo{db: db, log: baseLog.With("repo", "ReviewFeatureRepo")}
}

func (r *reviewFeatureRepo) GetByOwnerTopic(dbc dbctx.Context, ownerID uuid.UUID, topicID uuid.UUID) (*types.ReviewFeatureSet, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if ownerID == uuid.Nil || topicID == uuid.Nil {
		return nil, nil
	}
	var out types.ReviewFeatureSet
	err := t.WithContext(dbc.Ctx).Where("owner_id = ? AND topic_id = ?", ownerID, topicID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reviewFeatureRepo) Upsert(dbc dbctx.Context, row *types.ReviewFeatureSet) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.OwnerID == uuid.Nil || row.TopicID == uuid.Nil {
		return errors.New("review feature row requires owner_id and topic_id")
	}
	return t.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "topic_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"latest_score",
			"avg_score",
			"attempts_count",
			"last_attempt_date",
			"next_review_date",
			"mastered",
			"updated_at",
		}),
	}).Create(row).Error
}

func (r *reviewFeatureRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.ReviewFeatureSet, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewFeatureSet
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ?", ownerID).
		Order("next_review_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewFeatureRepo) ListOverdue(dbc dbctx.Context, ownerID uuid.UUID, before time.Time) ([]*types.ReviewFeatureSet, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewFeatureSet
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ? AND next_review_date < ?", ownerID, before.UTC()).
		Order("next_review_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewFeatureRepo) ListOwnersWithOverdue(dbc dbctx.Context, before time.Time) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.ReviewFeatureSet{}).
		Where("next_review_date < ?", before.UTC()).
		Distinct().
		Pluck("owner_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
