package quiz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
)

const DefaultFlashcardCount = 10

type FlashcardDeps struct {
	Questions repos.QuestionRepo
	Attempts  repos.AttemptRepo
}

type FlashcardInput struct {
	OwnerID uuid.UUID
	TopicID uuid.UUID
	Limit   int
}

// Flashcards puts up to MaxFlashcardRetries questions missed in the last attempt first and
// fills the rest with the topic's newest questions. Answers are included.
func Flashcards(ctx context.Context, deps FlashcardDeps, in FlashcardInput) ([]Flashcard, error) {
	if deps.Questions == nil || deps.Attempts == nil {
		return nil, fmt.Errorf("flashcards: missing deps")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultFlashcardCount
	}
	retryLimit := MaxFlashcardRetries
	if retryLimit > limit {
		retryLimit = limit
	}
	dbc := dbctx.Context{Ctx: ctx}

	retries, err := retryQuestions(dbc, deps.Attempts, deps.Questions, in.OwnerID, in.TopicID, retryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Flashcard, 0, limit)
	seen := map[uuid.UUID]bool{}
	for _, q := range retries {
		seen[q.ID] = true
		out = append(out, toFlashcard(q, true))
	}
	if len(out) >= limit {
		return out, nil
	}

	rest, err := deps.Questions.GetByTopic(dbc, in.OwnerID, in.TopicID, limit+len(retries))
	if err != nil {
		return nil, err
	}
	for _, q := range rest {
		if len(out) >= limit {
			break
		}
		if q == nil || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, toFlashcard(q, false))
	}
	return out, nil
}
