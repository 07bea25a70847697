package quiz

import (
	"fmt"
	"strings"
)

const (
	QuizSize              = 10
	MaxRetryQuestions     = 4
	MaxFlashcardRetries   = 8
	DefaultPromptMaxChars = 4000

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// NormalizeDifficulty maps anything unknown to medium.
func NormalizeDifficulty(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

var difficultyGuidance = map[string]string{
	DifficultyEasy:   "Ask about definitions and facts stated directly in the material. Wrong options should be clearly wrong to someone who read it.",
	DifficultyMedium: "Ask about how ideas in the material relate and how they apply to simple cases. Wrong options should be plausible.",
	DifficultyHard:   "Ask questions that need several reasoning steps or apply the material to a new situation. Wrong options should reflect common misconceptions.",
}

const systemPrompt = "You write multiple-choice study questions. Follow the output format exactly and output nothing else."

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

func buildPrompt(content string, n int, difficulty string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultPromptMaxChars
	}
	difficulty = NormalizeDifficulty(difficulty)
	var b strings.Builder
	fmt.Fprintf(&b, "Write exactly %d %s multiple-choice questions about the study material below.\n", n, difficulty)
	b.WriteString(difficultyGuidance[difficulty])
	b.WriteString("\n\nEvery question has exactly 4 options and exactly one correct option.\n")
	b.WriteString("Spread the correct answers across A, B, C and D; do not use the same letter for every question.\n\n")
	b.WriteString("Use this format for every question:\n")
	b.WriteString("Question 1: <question>\nA) <option>\nB) <option>\nC) <option>\nD) <option>\nAnswer: <A, B, C or D>\nExplanation: <one sentence>\n\n")
	b.WriteString("Material:\n")
	b.WriteString(truncateRunes(content, maxChars))
	return b.String()
}
