package quiz

import (
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of parsing one question block: either Parsed or Malformed.
type Result interface {
	isResult()
}

type Parsed struct {
	Number      int
	Prompt      string
	Options     [4]string
	Correct     string
	Explanation string
}

type Malformed struct {
	Number int
	Reason string
	Raw    string
}

func (Parsed) isResult()    {}
func (Malformed) isResult() {}

var (
	questionMarker = regexp.MustCompile(`(?im)^[\s*#]*question\s+(\d+)\s*[:.)]`)
	optionLine     = regexp.MustCompile(`(?i)^\s*\(?([A-D])\s*[).:]\s*(.*)$`)
	answerLine     = regexp.MustCompile(`(?i)^[\s*]*(?:correct\s+)?answer[\s*]*:[\s*]*\(?([A-D])\b`)
	explainLine    = regexp.MustCompile(`(?i)^[\s*]*explanation[\s*]*:[\s*]*(.*)$`)
)

// ParseBlocks splits generated text on "Question N:" markers and parses each block on its own.
// Text before the first marker is ignored.
func ParseBlocks(text string) []Result {
	locs := questionMarker.FindAllStringSubmatchIndex(text, -1)
	out := make([]Result, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		num, _ := strconv.Atoi(text[loc[2]:loc[3]])
		out = append(out, parseBlock(num, text[loc[1]:end]))
	}
	return out
}

func parseBlock(num int, body string) Result {
	var (
		stem        []string
		opts        [4]string
		seen        [4]bool
		nOpts       int
		correct     string
		explanation []string
		inExplain   bool
	)
	for _, line := range strings.Split(body, "\n") {
		if m := answerLine.FindStringSubmatch(line); m != nil && correct == "" {
			correct = strings.ToUpper(m[1])
			inExplain = false
			continue
		}
		if m := explainLine.FindStringSubmatch(line); m != nil {
			inExplain = true
			explanation = append(explanation, m[1])
			continue
		}
		if inExplain {
			explanation = append(explanation, line)
			continue
		}
		if correct == "" {
			if m := optionLine.FindStringSubmatch(line); m != nil {
				idx := int(strings.ToUpper(m[1])[0] - 'A')
				if !seen[idx] {
					seen[idx] = true
					opts[idx] = strings.TrimSpace(m[2])
					nOpts++
				}
				continue
			}
			if nOpts == 0 {
				stem = append(stem, line)
			}
		}
	}

	malformed := func(reason string) Result {
		return Malformed{Number: num, Reason: reason, Raw: strings.TrimSpace(body)}
	}
	prompt := strings.TrimSpace(strings.Trim(strings.TrimSpace(strings.Join(stem, "\n")), "*"))
	if prompt == "" {
		return malformed("missing question text")
	}
	for i := range opts {
		if !seen[i] || opts[i] == "" {
			return malformed("missing option " + string(rune('A'+i)))
		}
	}
	if correct == "" {
		return malformed("missing answer letter")
	}
	return Parsed{
		Number:      num,
		Prompt:      prompt,
		Options:     opts,
		Correct:     correct,
		Explanation: strings.TrimSpace(strings.Join(explanation, "\n")),
	}
}

// Parse keeps the well-formed blocks and counts the rest.
func Parse(text string) ([]Parsed, []Malformed) {
	var (
		ok  []Parsed
		bad []Malformed
	)
	for _, r := range ParseBlocks(text) {
		switch v := r.(type) {
		case Parsed:
			ok = append(ok, v)
		case Malformed:
			bad = append(bad, v)
		}
	}
	return ok, bad
}
