package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos/testutil"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
)

func TestTopicRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTopicRepo(db, testutil.Logger(t))

	owner := uuid.New()
	created, err := repo.Create(dbc, []*types.Topic{
		{OwnerID: owner, Title: "Cells", MergedContent: "a", SourceFileHash: "h"},
		{OwnerID: owner, Title: "Atoms", MergedContent: "b", SourceFileHash: "h", ClusterIndex: 1},
	})
	if err != nil || len(created) != 2 {
		t.Fatalf("Create: err=%v len=%d", err, len(created))
	}
	if created[0].Status != types.TopicStatusNotStarted {
		t.Fatalf("expected default status NotStarted, got %q", created[0].Status)
	}

	byOwner, err := repo.GetByOwner(dbc, owner)
	if err != nil || len(byOwner) != 2 {
		t.Fatalf("GetByOwner: err=%v len=%d", err, len(byOwner))
	}
	byHash, err := repo.GetByOwnerAndSourceHash(dbc, owner, "h")
	if err != nil || len(byHash) != 2 {
		t.Fatalf("GetByOwnerAndSourceHash: err=%v len=%d", err, len(byHash))
	}
	if other, _ := repo.GetByOwner(dbc, uuid.New()); len(other) != 0 {
		t.Fatalf("expected owner isolation, got %d", len(other))
	}

	if err := repo.UpdateStatus(dbc, []uuid.UUID{created[0].ID}, types.TopicStatusWeak); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil || got.Status != types.TopicStatusWeak {
		t.Fatalf("GetByID after UpdateStatus: got=%+v err=%v", got, err)
	}
	if err := repo.UpdateStatus(dbc, []uuid.UUID{created[0].ID}, "Bogus"); err == nil {
		t.Fatalf("expected invalid status error")
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", missing, err)
	}
}
