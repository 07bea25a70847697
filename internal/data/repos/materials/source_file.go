package materials

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type SourceFileRepo interface {
	// Create inserts one row. A clash on (owner_id, content_hash, pipeline) surfaces as
	// gorm.ErrDuplicatedKey when the connection translates errors.
	Create(dbc dbctx.Context, f *types.SourceFile) (*types.SourceFile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SourceFile, error)
	GetByOwnerHash(dbc dbctx.Context, ownerID uuid.UUID, contentHash string, pipeline string) (*types.SourceFile, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type sourceFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceFileRepo(db *gorm.DB, baseLog *logger.Logger) SourceFileRepo {
	return &sourceFileRepo{db: db, log: baseLog.With("repo", "SourceFileRepo")}
}

func (r *sourceFileRepo) Create(dbc dbctx.Context, f *types.SourceFile) (*types.SourceFile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if f == nil {
		return nil, errors.New("source file required")
	}
	if err := t.WithContext(dbc.Ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (r *sourceFileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SourceFile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.SourceFile
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sourceFileRepo) GetByOwnerHash(dbc dbctx.Context, ownerID uuid.UUID, contentHash string, pipeline string) (*types.SourceFile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if ownerID == uuid.Nil || contentHash == "" {
		return nil, nil
	}
	var out types.SourceFile
	err := t.WithContext(dbc.Ctx).
		Where("owner_id = ? AND content_hash = ? AND pipeline = ?", ownerID, contentHash, pipeline).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sourceFileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.SourceFile{}).Where("id = ?", id).Updates(updates).Error
}

func (r *sourceFileRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.SourceFile{}).Error
}
