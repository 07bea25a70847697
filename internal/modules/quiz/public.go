package quiz

import (
	"github.com/google/uuid"

	types "github.com/aryansondharva/Aura/internal/domain"
)

// PublicQuestion is a question as shown while taking a quiz: no answer, no explanation.
type PublicQuestion struct {
	ID         uuid.UUID `json:"id"`
	TopicID    uuid.UUID `json:"topic_id"`
	Prompt     string    `json:"prompt"`
	Options    []string  `json:"options"`
	Difficulty string    `json:"difficulty"`
	IsRetry    bool      `json:"is_retry"`
}

type Flashcard struct {
	ID            uuid.UUID `json:"id"`
	Prompt        string    `json:"prompt"`
	Options       []string  `json:"options"`
	CorrectOption string    `json:"correct_option"`
	Explanation   string    `json:"explanation"`
	IsRetry       bool      `json:"is_retry"`
}

func toPublic(q *types.Question, retry bool) PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		TopicID:    q.TopicID,
		Prompt:     q.Prompt,
		Options:    q.OptionList(),
		Difficulty: q.Difficulty,
		IsRetry:    retry,
	}
}

func toFlashcard(q *types.Question, retry bool) Flashcard {
	return Flashcard{
		ID:            q.ID,
		Prompt:        q.Prompt,
		Options:       q.OptionList(),
		CorrectOption: q.CorrectOption,
		Explanation:   q.Explanation,
		IsRetry:       retry,
	}
}
