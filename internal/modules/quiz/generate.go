package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/modules/ai"
	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type GenerateDeps struct {
	Log       *logger.Logger
	Gen       ai.TextGenerator
	Questions repos.QuestionRepo
	Attempts  repos.AttemptRepo
}

type GenerateInput struct {
	Topic          *types.Topic
	OwnerID        uuid.UUID
	Difficulty     string
	PromptMaxChars int
	// Rand drives the shuffle; nil seeds from the clock.
	Rand *rand.Rand
}

type GenerateOutput struct {
	Questions  []PublicQuestion
	Requested  int
	RetryCount int
	Generated  int
	Malformed  int
}

// Generate builds a quiz of at most QuizSize questions: up to MaxRetryQuestions missed in the
// last attempt, the rest freshly generated. Only the new questions are stored.
func Generate(ctx context.Context, deps GenerateDeps, in GenerateInput) (GenerateOutput, error) {
	out := GenerateOutput{}
	if deps.Log == nil || deps.Gen == nil || deps.Questions == nil || deps.Attempts == nil {
		return out, fmt.Errorf("quiz_generate: missing deps")
	}
	if in.Topic == nil || in.Topic.ID == uuid.Nil {
		return out, fmt.Errorf("quiz_generate: missing topic")
	}
	if in.OwnerID == uuid.Nil {
		return out, fmt.Errorf("quiz_generate: missing owner_id")
	}
	difficulty := NormalizeDifficulty(in.Difficulty)
	dbc := dbctx.Context{Ctx: ctx}

	retries, err := retryQuestions(dbc, deps.Attempts, deps.Questions, in.OwnerID, in.Topic.ID, MaxRetryQuestions)
	if err != nil {
		return out, fmt.Errorf("quiz_generate: load retry questions: %w", err)
	}
	out.RetryCount = len(retries)
	out.Requested = QuizSize - len(retries)

	raw, err := deps.Gen.GenerateText(ctx, systemPrompt, buildPrompt(in.Topic.MergedContent, out.Requested, difficulty, in.PromptMaxChars))
	if err != nil {
		return out, err
	}
	parsed, malformed := Parse(raw)
	for _, m := range malformed {
		deps.Log.Warn("dropping malformed question block", "topic_id", in.Topic.ID, "number", m.Number, "reason", m.Reason)
	}
	if len(parsed) > out.Requested {
		parsed = parsed[:out.Requested]
	}
	out.Generated = len(parsed)
	out.Malformed = len(malformed)
	observability.Current().ObserveQuizParse(len(parsed), len(malformed))
	if len(parsed) < out.Requested {
		deps.Log.Warn("quiz under-generated", "topic_id", in.Topic.ID, "requested", out.Requested, "parsed", len(parsed))
	}
	if singleLetter(parsed) {
		deps.Log.Warn("all generated questions share one correct letter", "topic_id", in.Topic.ID, "letter", parsed[0].Correct, "count", len(parsed))
		observability.Current().IncQuizSingleLetterBatch()
	}

	fresh := make([]*types.Question, 0, len(parsed))
	for _, p := range parsed {
		fresh = append(fresh, &types.Question{
			ID:            uuid.New(),
			TopicID:       in.Topic.ID,
			OwnerID:       in.OwnerID,
			Prompt:        p.Prompt,
			Options:       types.OptionsJSON(p.Options),
			CorrectOption: p.Correct,
			Explanation:   p.Explanation,
			Difficulty:    difficulty,
		})
	}

	type entry struct {
		q     *types.Question
		retry bool
	}
	all := make([]entry, 0, len(retries)+len(fresh))
	for _, q := range retries {
		all = append(all, entry{q: q, retry: true})
	}
	for _, q := range fresh {
		all = append(all, entry{q: q})
	}
	r := in.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	Shuffle(all, r)

	if len(fresh) > 0 {
		if _, err := deps.Questions.Create(dbc, fresh); err != nil {
			return out, fmt.Errorf("quiz_generate: persist questions: %w", err)
		}
	}

	out.Questions = make([]PublicQuestion, 0, len(all))
	for _, e := range all {
		out.Questions = append(out.Questions, toPublic(e.q, e.retry))
	}
	return out, nil
}
