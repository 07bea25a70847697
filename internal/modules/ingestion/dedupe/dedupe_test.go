package dedupe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type key struct {
	owner    uuid.UUID
	hash     string
	pipeline string
}

// memFiles mimics the unique index with a map.
type memFiles struct {
	rows map[key]*types.SourceFile
}

func newMemFiles() *memFiles { return &memFiles{rows: map[key]*types.SourceFile{}} }

func (m *memFiles) Create(_ dbctx.Context, f *types.SourceFile) (*types.SourceFile, error) {
	k := key{f.OwnerID, f.ContentHash, f.Pipeline}
	if _, ok := m.rows[k]; ok {
		return nil, fmt.Errorf("insert source_files: %w", gorm.ErrDuplicatedKey)
	}
	f.ID = uuid.New()
	m.rows[k] = f
	return f, nil
}

func (m *memFiles) GetByID(_ dbctx.Context, id uuid.UUID) (*types.SourceFile, error) {
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memFiles) GetByOwnerHash(_ dbctx.Context, owner uuid.UUID, hash, pipeline string) (*types.SourceFile, error) {
	return m.rows[key{owner, hash, pipeline}], nil
}

func (m *memFiles) UpdateFields(dbctx.Context, uuid.UUID, map[string]interface{}) error { return nil }

func (m *memFiles) FullDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	for k, r := range m.rows {
		for _, id := range ids {
			if r.ID == id {
				delete(m.rows, k)
			}
		}
	}
	return nil
}

func TestContentHash_Deterministic(t *testing.T) {
	a := ContentHash([]byte("same bytes"))
	b := ContentHash([]byte("same bytes"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, ContentHash([]byte("other bytes")))
}

func TestDetector_ScopedPerOwner(t *testing.T) {
	ctx := context.Background()
	d := NewDetector(logger.Nop(), newMemFiles())
	owner, other := uuid.New(), uuid.New()
	hash := ContentHash([]byte("doc"))

	dup, err := d.IsDuplicate(ctx, hash, owner, types.PipelineChat)
	require.NoError(t, err)
	assert.False(t, dup, "first upload is never a duplicate")

	_, err = d.Claim(ctx, ClaimInput{OwnerID: owner, ContentHash: hash, Pipeline: types.PipelineChat})
	require.NoError(t, err)

	dup, err = d.IsDuplicate(ctx, hash, owner, types.PipelineChat)
	require.NoError(t, err)
	assert.True(t, dup)

	_, err = d.Claim(ctx, ClaimInput{OwnerID: owner, ContentHash: hash, Pipeline: types.PipelineChat})
	assert.True(t, errors.Is(err, ErrDuplicate))

	dup, err = d.IsDuplicate(ctx, hash, other, types.PipelineChat)
	require.NoError(t, err)
	assert.False(t, dup, "other owners never collide")
	_, err = d.Claim(ctx, ClaimInput{OwnerID: other, ContentHash: hash, Pipeline: types.PipelineChat})
	assert.NoError(t, err)
}

func TestDetector_ReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	d := NewDetector(logger.Nop(), newMemFiles())
	owner := uuid.New()
	in := ClaimInput{OwnerID: owner, ContentHash: "h", Pipeline: types.PipelineTopics}

	row, err := d.Claim(ctx, in)
	require.NoError(t, err)
	require.NoError(t, d.Release(ctx, row.ID))

	_, err = d.Claim(ctx, in)
	assert.NoError(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: source_files.owner_id")))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_source_file_owner_hash"`)))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}
