package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/modules/scheduler"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

// ErrNoGradedAnswers means none of the responses referenced a question of the topic. Nothing is
// recorded in that case.
var ErrNoGradedAnswers = errors.New("no answers reference questions of this topic")

type Response struct {
	QuestionID     uuid.UUID
	SelectedOption string
}

type SubmitDeps struct {
	Log       *logger.Logger
	Topics    repos.TopicRepo
	Questions repos.QuestionRepo
	Attempts  repos.AttemptRepo
	Reviews   repos.ReviewFeatureRepo
	Predictor scheduler.Predictor
	// Now defaults to time.Now.
	Now func() time.Time
}

type SubmitInput struct {
	OwnerID   uuid.UUID
	TopicID   uuid.UUID
	Responses []Response
}

type SubmitOutput struct {
	Attempt        *types.Attempt
	Score          float64
	Status         string
	Mastered       bool
	NextReviewDays int
	NextReviewDate time.Time
}

// Submit grades the responses and records the attempt, the review features and the topic
// status. The three writes are independent; a failure after the attempt is stored is
// returned without undoing earlier writes.
func Submit(ctx context.Context, deps SubmitDeps, in SubmitInput) (SubmitOutput, error) {
	out := SubmitOutput{}
	if deps.Log == nil || deps.Topics == nil || deps.Questions == nil || deps.Attempts == nil || deps.Reviews == nil || deps.Predictor == nil {
		return out, fmt.Errorf("progress_submit: missing deps")
	}
	if in.OwnerID == uuid.Nil || in.TopicID == uuid.Nil {
		return out, fmt.Errorf("progress_submit: missing owner_id or topic_id")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	submittedAt := now().UTC()
	today := scheduler.Today(submittedAt)
	dbc := dbctx.Context{Ctx: ctx}

	ids := make([]uuid.UUID, 0, len(in.Responses))
	for _, r := range in.Responses {
		ids = append(ids, r.QuestionID)
	}
	rows, err := deps.Questions.GetByIDs(dbc, ids)
	if err != nil {
		return out, fmt.Errorf("progress_submit: load questions: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Question, len(rows))
	for _, q := range rows {
		if q != nil && q.TopicID == in.TopicID && q.OwnerID == in.OwnerID {
			byID[q.ID] = q
		}
	}

	attempt := &types.Attempt{
		ID:          uuid.New(),
		OwnerID:     in.OwnerID,
		TopicID:     in.TopicID,
		SubmittedAt: submittedAt,
	}
	seen := map[uuid.UUID]bool{}
	for _, r := range in.Responses {
		q := byID[r.QuestionID]
		if q == nil || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		selected := strings.ToUpper(strings.TrimSpace(r.SelectedOption))
		correct := selected != "" && strings.EqualFold(selected, strings.TrimSpace(q.CorrectOption))
		if correct {
			attempt.CorrectCount++
		}
		attempt.Answers = append(attempt.Answers, &types.Answer{
			AttemptID:      attempt.ID,
			QuestionID:     q.ID,
			SelectedOption: selected,
			IsCorrect:      correct,
		})
	}
	attempt.TotalQuestions = len(attempt.Answers)
	if attempt.TotalQuestions == 0 {
		return out, ErrNoGradedAnswers
	}
	attempt.Score = Score(attempt.CorrectCount, attempt.TotalQuestions)

	out.Attempt = attempt
	out.Score = attempt.Score
	out.Status = TopicStatus(attempt.Score)
	out.Mastered = Mastered(attempt.Score)

	if _, err := deps.Attempts.Create(dbc, attempt); err != nil {
		deps.Log.Error("store attempt failed", "owner_id", in.OwnerID, "topic_id", in.TopicID, "error", err)
		return out, fmt.Errorf("progress_submit: store attempt: %w", err)
	}

	prev, err := deps.Reviews.GetByOwnerTopic(dbc, in.OwnerID, in.TopicID)
	if err != nil {
		deps.Log.Error("load review features failed", "owner_id", in.OwnerID, "topic_id", in.TopicID, "attempt_id", attempt.ID, "error", err)
		return out, fmt.Errorf("progress_submit: load review features: %w", err)
	}
	row := &types.ReviewFeatureSet{OwnerID: in.OwnerID, TopicID: in.TopicID}
	daysSince := 0.0
	if prev != nil {
		row.AttemptsCount = prev.AttemptsCount
		row.AvgScore = prev.AvgScore
		if !prev.LastAttemptDate.IsZero() {
			daysSince = float64(scheduler.DaysBetween(prev.LastAttemptDate, today))
		}
	}
	row.AvgScore = RunningMean(row.AvgScore, row.AttemptsCount, attempt.Score)
	row.AttemptsCount++
	row.LatestScore = attempt.Score
	row.LastAttemptDate = today
	row.Mastered = out.Mastered

	out.NextReviewDays = deps.Predictor.PredictNextReviewDays(row.LatestScore, row.AvgScore, float64(row.AttemptsCount), daysSince)
	out.NextReviewDate = scheduler.NextReviewDate(today, out.NextReviewDays)
	row.NextReviewDate = out.NextReviewDate

	if err := deps.Reviews.Upsert(dbc, row); err != nil {
		deps.Log.Error("store review features failed", "owner_id", in.OwnerID, "topic_id", in.TopicID, "attempt_id", attempt.ID, "error", err)
		return out, fmt.Errorf("progress_submit: store review features: %w", err)
	}
	if err := deps.Topics.UpdateStatus(dbc, []uuid.UUID{in.TopicID}, out.Status); err != nil {
		deps.Log.Error("update topic status failed", "owner_id", in.OwnerID, "topic_id", in.TopicID, "attempt_id", attempt.ID, "error", err)
		return out, fmt.Errorf("progress_submit: update topic status: %w", err)
	}
	return out, nil
}
