package materials

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type ChunkRepo interface {
	Create(dbc dbctx.Context, rows []*types.Chunk) ([]*types.Chunk, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Chunk, error)
	GetBySourceFileIDs(dbc dbctx.Context, sourceFileIDs []uuid.UUID) ([]*types.Chunk, error)
	ListRecentByOwner(dbc dbctx.Context, ownerID uuid.UUID, limit int) ([]*types.Chunk, error)
	FullDeleteBySourceFileIDs(dbc dbctx.Context, sourceFileIDs []uuid.UUID) error
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) Create(dbc dbctx.Context, rows []*types.Chunk) ([]*types.Chunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Chunk{}, nil
	}
	if err := t.WithContext(dbc.Ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chunkRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Chunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Chunk
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chunkRepo) GetBySourceFileIDs(dbc dbctx.Context, sourceFileIDs []uuid.UUID) ([]*types.Chunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Chunk
	if len(sourceFileIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("source_file_id IN ?", sourceFileIDs).
		Order("source_file_id ASC, ordinal ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chunkRepo) ListRecentByOwner(dbc dbctx.Context, ownerID uuid.UUID, limit int) ([]*types.Chunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Chunk
	if ownerID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 5
	}
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, ordinal ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chunkRepo) FullDeleteBySourceFileIDs(dbc dbctx.Context, sourceFileIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(sourceFileIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("source_file_id IN ?", sourceFileIDs).Delete(&types.Chunk{}).Error
}
