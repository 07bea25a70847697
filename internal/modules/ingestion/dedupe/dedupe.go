package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

// ErrDuplicate is returned when the owner already uploaded the same bytes to the same pipeline.
var ErrDuplicate = errors.New("duplicate upload")

func ContentHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

type ClaimInput struct {
	OwnerID      uuid.UUID
	ContentHash  string
	Pipeline     string
	OriginalName string
	MimeType     string
	SizeBytes    int64
}

type Detector struct {
	log   *logger.Logger
	files repos.SourceFileRepo
}

func NewDetector(baseLog *logger.Logger, files repos.SourceFileRepo) *Detector {
	return &Detector{log: baseLog.With("component", "DuplicateDetector"), files: files}
}

// IsDuplicate reports whether ownerID already holds a file with this hash in the pipeline.
// Other owners never count.
func (d *Detector) IsDuplicate(ctx context.Context, contentHash string, ownerID uuid.UUID, pipeline string) (bool, error) {
	if d == nil || d.files == nil {
		return false, fmt.Errorf("dedupe: missing deps")
	}
	row, err := d.files.GetByOwnerHash(dbctx.Context{Ctx: ctx}, ownerID, contentHash, pipeline)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// Claim records the upload. The unique index on (owner_id, content_hash, pipeline) decides
// the race: the loser gets ErrDuplicate.
func (d *Detector) Claim(ctx context.Context, in ClaimInput) (*types.SourceFile, error) {
	if d == nil || d.files == nil {
		return nil, fmt.Errorf("dedupe: missing deps")
	}
	if in.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("dedupe: missing owner_id")
	}
	if strings.TrimSpace(in.ContentHash) == "" {
		return nil, fmt.Errorf("dedupe: missing content_hash")
	}
	row, err := d.files.Create(dbctx.Context{Ctx: ctx}, &types.SourceFile{
		OwnerID:      in.OwnerID,
		ContentHash:  in.ContentHash,
		Pipeline:     in.Pipeline,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		SizeBytes:    in.SizeBytes,
	})
	if err != nil {
		if IsUniqueViolation(err) {
			d.log.Info("duplicate upload rejected", "owner_id", in.OwnerID, "pipeline", in.Pipeline)
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("dedupe: claim: %w", err)
	}
	return row, nil
}

// Release drops a claim so the owner can retry after a failed run.
func (d *Detector) Release(ctx context.Context, id uuid.UUID) error {
	if d == nil || d.files == nil || id == uuid.Nil {
		return nil
	}
	return d.files.FullDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id})
}

// IsUniqueViolation matches gorm's translated error and the raw driver messages for
// drivers that do not translate.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
