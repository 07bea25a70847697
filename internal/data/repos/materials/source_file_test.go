package materials

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryansondharva/Aura/internal/data/repos/testutil"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
)

func TestSourceFileRepoUniquePerOwnerHashPipeline(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewSourceFileRepo(db, testutil.Logger(t))

	owner := uuid.New()
	first := &types.SourceFile{OwnerID: owner, ContentHash: "abc", Pipeline: types.PipelineChat, SizeBytes: 3}
	if _, err := repo.Create(dbc, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same pipeline, same owner: constraint violation.
	sp := tx.SavePoint("dup")
	_, err := repo.Create(dbc, &types.SourceFile{OwnerID: owner, ContentHash: "abc", Pipeline: types.PipelineChat})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
	sp.RollbackTo("dup")

	// Other owner or other pipeline: allowed.
	if _, err := repo.Create(dbc, &types.SourceFile{OwnerID: uuid.New(), ContentHash: "abc", Pipeline: types.PipelineChat}); err != nil {
		t.Fatalf("Create other owner: %v", err)
	}
	if _, err := repo.Create(dbc, &types.SourceFile{OwnerID: owner, ContentHash: "abc", Pipeline: types.PipelineTopics}); err != nil {
		t.Fatalf("Create other pipeline: %v", err)
	}

	got, err := repo.GetByOwnerHash(dbc, owner, "abc", types.PipelineChat)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("GetByOwnerHash: got=%v err=%v", got, err)
	}
	if err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{"chunk_count": 4}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, first.ID); got == nil || got.ChunkCount != 4 {
		t.Fatalf("GetByID after update: %+v", got)
	}
	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{first.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if got, _ := repo.GetByID(dbc, first.ID); got != nil {
		t.Fatalf("expected row deleted")
	}
}
