package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type SweepDeps struct {
	Log      *logger.Logger
	Topics   repos.TopicRepo
	Attempts repos.AttemptRepo
	Reviews  repos.ReviewFeatureRepo
}

type SweepInput struct {
	OwnerID uuid.UUID
	Now     time.Time
}

type SweepOutput struct {
	ResetTopicIDs  []uuid.UUID
	ZeroedAttempts int
}

// Sweep marks every topic whose review date is before today as Weak and zeroes the score of
// its most recent attempt. Review feature rows are left as they are.
func Sweep(ctx context.Context, deps SweepDeps, in SweepInput) (SweepOutput, error) {
	out := SweepOutput{}
	if deps.Log == nil || deps.Topics == nil || deps.Attempts == nil || deps.Reviews == nil {
		return out, fmt.Errorf("review_sweep: missing deps")
	}
	if in.OwnerID == uuid.Nil {
		return out, fmt.Errorf("review_sweep: missing owner_id")
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := Today(now)
	dbc := dbctx.Context{Ctx: ctx}

	overdue, err := deps.Reviews.ListOverdue(dbc, in.OwnerID, today)
	if err != nil {
		return out, fmt.Errorf("review_sweep: list overdue: %w", err)
	}
	if len(overdue) == 0 {
		return out, nil
	}
	for _, r := range overdue {
		if r != nil {
			out.ResetTopicIDs = append(out.ResetTopicIDs, r.TopicID)
		}
	}
	if err := deps.Topics.UpdateStatus(dbc, out.ResetTopicIDs, types.TopicStatusWeak); err != nil {
		return out, fmt.Errorf("review_sweep: update topic status: %w", err)
	}
	for _, topicID := range out.ResetTopicIDs {
		latest, err := deps.Attempts.GetLatest(dbc, in.OwnerID, topicID)
		if err != nil {
			return out, fmt.Errorf("review_sweep: load latest attempt: %w", err)
		}
		if latest == nil {
			continue
		}
		if err := deps.Attempts.UpdateScore(dbc, latest.ID, 0); err != nil {
			return out, fmt.Errorf("review_sweep: reset attempt score: %w", err)
		}
		out.ZeroedAttempts++
	}
	deps.Log.Info("overdue sweep reset topics", "owner_id", in.OwnerID, "topics", len(out.ResetTopicIDs), "attempts", out.ZeroedAttempts)
	observability.Current().AddSweepResets(len(out.ResetTopicIDs))
	return out, nil
}
