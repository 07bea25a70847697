package materials

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos/testutil"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
)

func TestChunkRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	files := NewSourceFileRepo(db, testutil.Logger(t))
	repo := NewChunkRepo(db, testutil.Logger(t))

	owner := uuid.New()
	f, err := files.Create(dbc, &types.SourceFile{OwnerID: owner, ContentHash: "h1", Pipeline: types.PipelineChat})
	if err != nil {
		t.Fatalf("seed file: %v", err)
	}
	rows := []*types.Chunk{
		{SourceFileID: f.ID, OwnerID: owner, Ordinal: 1, Content: "second", ContentHash: "b"},
		{SourceFileID: f.ID, OwnerID: owner, Ordinal: 0, Content: "first", ContentHash: "a"},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetBySourceFileIDs(dbc, []uuid.UUID{f.ID})
	if err != nil || len(got) != 2 {
		t.Fatalf("GetBySourceFileIDs: err=%v len=%d", err, len(got))
	}
	if got[0].Ordinal != 0 || got[1].Ordinal != 1 {
		t.Fatalf("expected ordinal order, got %d,%d", got[0].Ordinal, got[1].Ordinal)
	}
	if byID, err := repo.GetByIDs(dbc, []uuid.UUID{rows[0].ID}); err != nil || len(byID) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(byID))
	}
	if recent, err := repo.ListRecentByOwner(dbc, owner, 1); err != nil || len(recent) != 1 {
		t.Fatalf("ListRecentByOwner: err=%v len=%d", err, len(recent))
	}
	if err := repo.FullDeleteBySourceFileIDs(dbc, []uuid.UUID{f.ID}); err != nil {
		t.Fatalf("FullDeleteBySourceFileIDs: %v", err)
	}
	if left, _ := repo.GetBySourceFileIDs(dbc, []uuid.UUID{f.ID}); len(left) != 0 {
		t.Fatalf("expected no chunks, got %d", len(left))
	}
}
