package topics

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/aryansondharva/Aura/internal/modules/ai"
)

const (
	MaxTitleWords         = 5
	DedupThreshold        = 0.8
	DefaultPromptMaxChars = 3000
)

func words(s string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Fields(clean)
}

// Jaccard is the word-set similarity of two titles, ignoring case and punctuation.
// Two empty titles are identical.
func Jaccard(a, b string) float64 {
	sa := map[string]struct{}{}
	for _, w := range words(a) {
		sa[w] = struct{}{}
	}
	sb := map[string]struct{}{}
	for _, w := range words(b) {
		sb[w] = struct{}{}
	}
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

func TruncateWords(s string, n int) string {
	f := strings.Fields(s)
	if len(f) > n {
		f = f[:n]
	}
	return strings.Join(f, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

const titleSystemPrompt = "You label study material. Reply with exactly two lines and nothing else."

func buildTitlePrompt(content string, maxChars int) string {
	return fmt.Sprintf(`Read the study material below and name its topic.

Reply in this exact format:
Title: <at most %d words>
Summary: <2-3 sentences>

Material:
%s`, MaxTitleWords, truncateRunes(content, maxChars))
}

var (
	titleLine   = regexp.MustCompile(`(?im)^\s*\**\s*title\s*\**\s*:\s*(.+)$`)
	summaryLine = regexp.MustCompile(`(?is)^\s*\**\s*summary\s*\**\s*:\s*(.+)$`)
)

// parseTitleReply reads the Title/Summary reply. When the labels are missing the first
// non-empty line is the title and the rest is the summary.
func parseTitleReply(raw string) (title, summary string) {
	raw = strings.TrimSpace(raw)
	if m := titleLine.FindStringSubmatch(raw); m != nil {
		title = m[1]
	}
	lines := strings.Split(raw, "\n")
	for i, ln := range lines {
		if m := summaryLine.FindStringSubmatch(ln); m != nil {
			summary = strings.TrimSpace(m[1] + "\n" + strings.Join(lines[i+1:], "\n"))
			break
		}
	}
	if title == "" {
		for i, ln := range lines {
			if strings.TrimSpace(ln) != "" {
				title = ln
				if summary == "" {
					summary = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
				}
				break
			}
		}
	}
	title = strings.Trim(strings.TrimSpace(title), `"'*#`)
	return TruncateWords(title, MaxTitleWords), strings.TrimSpace(strings.TrimLeft(summary, "* "))
}

type Titler struct {
	Gen      ai.TextGenerator
	MaxChars int
}

func (t Titler) Title(ctx context.Context, content string) (string, string, error) {
	if t.Gen == nil {
		return "", "", fmt.Errorf("titler: missing generator")
	}
	maxChars := t.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultPromptMaxChars
	}
	raw, err := t.Gen.GenerateText(ctx, titleSystemPrompt, buildTitlePrompt(content, maxChars))
	if err != nil {
		return "", "", err
	}
	title, summary := parseTitleReply(raw)
	if title == "" {
		return "", "", fmt.Errorf("titler: empty title")
	}
	return title, summary, nil
}
