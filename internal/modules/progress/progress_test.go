package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryansondharva/Aura/internal/data/repos"
	"github.com/aryansondharva/Aura/internal/data/repos/testutil"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/modules/scheduler"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
)

func TestScore(t *testing.T) {
	assert.Equal(t, 0.0, Score(0, 10))
	assert.Equal(t, 10.0, Score(10, 10))
	assert.Equal(t, 8.0, Score(8, 10))
	assert.InDelta(t, 6.6667, Score(2, 3), 1e-4)
	assert.Equal(t, 0.0, Score(3, 0))
	assert.Equal(t, 10.0, Score(12, 10))
	for total := 1; total <= 12; total++ {
		for c := 0; c <= total; c++ {
			assert.Equal(t, float64(c)/float64(total)*10, Score(c, total))
		}
	}
}

func TestTopicStatus(t *testing.T) {
	assert.Equal(t, types.TopicStatusWeak, TopicStatus(7))
	assert.Equal(t, types.TopicStatusCompleted, TopicStatus(7.01))
	assert.Equal(t, types.TopicStatusWeak, TopicStatus(0))
	assert.Equal(t, types.TopicStatusCompleted, TopicStatus(10))
	assert.False(t, Mastered(7))
	assert.True(t, Mastered(8))
}

func TestRunningMean(t *testing.T) {
	assert.Equal(t, 6.0, RunningMean(0, 0, 6))
	assert.Equal(t, 7.0, RunningMean(6, 1, 8))
	assert.InDelta(t, 6.0, RunningMean(7, 2, 4), 1e-9)
}

type fixedPredictor int

func (f fixedPredictor) PredictNextReviewDays(float64, float64, float64, float64) int { return int(f) }

func TestSubmit_EndToEndWithSweep(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	topics := repos.NewTopicRepo(tx, log)
	questions := repos.NewQuestionRepo(tx, log)
	attempts := repos.NewAttemptRepo(tx, log)
	reviews := repos.NewReviewFeatureRepo(tx, log)

	owner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, tx, owner, "Genetics")
	var qs []*types.Question
	for i := 0; i < 10; i++ {
		qs = append(qs, testutil.SeedQuestion(t, ctx, tx, owner, topic.ID, "q", "B"))
	}

	day1 := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	deps := SubmitDeps{
		Log: log, Topics: topics, Questions: questions, Attempts: attempts, Reviews: reviews,
		Predictor: scheduler.Heuristic{},
		Now:       func() time.Time { return day1 },
	}

	responses := func(correct int) []Response {
		var out []Response
		for i, q := range qs {
			sel := "a"
			if i < correct {
				sel = "b"
			}
			out = append(out, Response{QuestionID: q.ID, SelectedOption: sel})
		}
		return out
	}

	out, err := Submit(ctx, deps, SubmitInput{OwnerID: owner, TopicID: topic.ID, Responses: responses(8)})
	require.NoError(t, err)
	assert.Equal(t, 8.0, out.Score)
	assert.Equal(t, types.TopicStatusCompleted, out.Status)
	assert.True(t, out.Mastered)
	assert.Equal(t, 3, out.NextReviewDays)
	assert.Equal(t, time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC), out.NextReviewDate)
	assert.Len(t, out.Attempt.Answers, 10)

	got, err := topics.GetByID(dbc, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TopicStatusCompleted, got.Status)

	day2 := day1.AddDate(0, 0, 2)
	deps.Now = func() time.Time { return day2 }
	out, err = Submit(ctx, deps, SubmitInput{OwnerID: owner, TopicID: topic.ID, Responses: responses(5)})
	require.NoError(t, err)
	assert.Equal(t, 5.0, out.Score)
	assert.Equal(t, types.TopicStatusWeak, out.Status)
	assert.False(t, out.Mastered)

	row, err := reviews.GetByOwnerTopic(dbc, owner, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.AttemptsCount)
	assert.Equal(t, 5.0, row.LatestScore)
	assert.InDelta(t, 6.5, row.AvgScore, 1e-9)
	assert.False(t, row.Mastered)
	assert.Equal(t, scheduler.Today(day2), row.LastAttemptDate.UTC())
	assert.Equal(t, scheduler.NextReviewDate(day2, 5), row.NextReviewDate.UTC())

	// once the review date has passed the sweep zeroes the latest attempt
	_, err = scheduler.Sweep(ctx, scheduler.SweepDeps{Log: log, Topics: topics, Attempts: attempts, Reviews: reviews},
		scheduler.SweepInput{OwnerID: owner, Now: day2.AddDate(0, 0, 6)})
	require.NoError(t, err)
	latest, err := attempts.GetLatest(dbc, owner, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, latest.Score)
	got, err = topics.GetByID(dbc, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TopicStatusWeak, got.Status)
}

func TestSubmit_IgnoresForeignQuestions(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	owner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, tx, owner, "Mine")
	other := testutil.SeedTopic(t, ctx, tx, owner, "Other")
	mine := testutil.SeedQuestion(t, ctx, tx, owner, topic.ID, "q", "C")
	foreign := testutil.SeedQuestion(t, ctx, tx, owner, other.ID, "q", "C")

	out, err := Submit(ctx, SubmitDeps{
		Log: log, Topics: repos.NewTopicRepo(tx, log), Questions: repos.NewQuestionRepo(tx, log),
		Attempts: repos.NewAttemptRepo(tx, log), Reviews: repos.NewReviewFeatureRepo(tx, log),
		Predictor: fixedPredictor(4),
	}, SubmitInput{OwnerID: owner, TopicID: topic.ID, Responses: []Response{
		{QuestionID: mine.ID, SelectedOption: "c"},
		{QuestionID: mine.ID, SelectedOption: "a"},
		{QuestionID: foreign.ID, SelectedOption: "C"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Attempt.TotalQuestions)
	assert.Equal(t, 10.0, out.Score)
	assert.Equal(t, 4, out.NextReviewDays)
}

func TestSubmit_NothingGradableIsNotRecorded(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	owner := uuid.New()
	topic := testutil.SeedTopic(t, ctx, tx, owner, "Mine")
	other := testutil.SeedTopic(t, ctx, tx, owner, "Other")
	foreign := testutil.SeedQuestion(t, ctx, tx, owner, other.ID, "q", "C")

	deps := SubmitDeps{
		Log: log, Topics: repos.NewTopicRepo(tx, log), Questions: repos.NewQuestionRepo(tx, log),
		Attempts: repos.NewAttemptRepo(tx, log), Reviews: repos.NewReviewFeatureRepo(tx, log),
		Predictor: scheduler.Heuristic{},
	}
	for name, responses := range map[string][]Response{
		"empty":   nil,
		"foreign": {{QuestionID: foreign.ID, SelectedOption: "C"}},
		"unknown": {{QuestionID: uuid.New(), SelectedOption: "A"}},
	} {
		_, err := Submit(ctx, deps, SubmitInput{OwnerID: owner, TopicID: topic.ID, Responses: responses})
		require.ErrorIs(t, err, ErrNoGradedAnswers, name)
	}

	dbc := dbctx.Context{Ctx: ctx}
	attempts, err := deps.Attempts.ListByTopic(dbc, owner, topic.ID)
	require.NoError(t, err)
	assert.Empty(t, attempts)
	row, err := deps.Reviews.GetByOwnerTopic(dbc, owner, topic.ID)
	require.NoError(t, err)
	assert.Nil(t, row)
	stored, err := deps.Topics.GetByID(dbc, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, topic.Status, stored.Status)
}
