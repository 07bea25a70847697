package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/aryansondharva/Aura/internal/domain"
)

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, title string) *types.Topic {
	tb.Helper()
	t := &types.Topic{
		OwnerID:        ownerID,
		Title:          title,
		Summary:        "summary of " + title,
		MergedContent:  "content about " + title,
		Status:         types.TopicStatusNotStarted,
		SourceFileHash: "hash-" + title,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID, topicID uuid.UUID, prompt, correct string) *types.Question {
	tb.Helper()
	q := &types.Question{
		OwnerID:       ownerID,
		TopicID:       topicID,
		Prompt:        prompt,
		Options:       types.OptionsJSON([4]string{"one", "two", "three", "four"}),
		CorrectOption: correct,
		Explanation:   "because",
		Difficulty:    "medium",
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID, topicID uuid.UUID, score float64, at time.Time, answers ...*types.Answer) *types.Attempt {
	tb.Helper()
	a := &types.Attempt{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		TopicID:        topicID,
		Score:          score,
		TotalQuestions: len(answers),
		SubmittedAt:    at.UTC(),
		Answers:        answers,
	}
	for _, ans := range answers {
		ans.AttemptID = a.ID
		if ans.IsCorrect {
			a.CorrectCount++
		}
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}
