package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// FeatureOrder is the column order the model was trained with.
var FeatureOrder = []string{"latest_score", "avg_score", "attempts_count", "days_since_last_attempt"}

type tree struct {
	left        []int
	right       []int
	splitIndex  []int
	splitCond   []float64
	defaultLeft []bool
}

// XGBModel evaluates a gradient boosted tree ensemble saved with Booster.save_model(*.json).
// Only identity-link regression objectives are supported.
type XGBModel struct {
	baseScore float64
	numFeat   int
	trees     []tree
}

type xgbFile struct {
	Learner struct {
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []xgbTree `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

type xgbTree struct {
	LeftChildren    []int      `json:"left_children"`
	RightChildren   []int      `json:"right_children"`
	SplitIndices    []int      `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`
	BaseWeights     []float64  `json:"base_weights"`
}

// flexBool accepts both 0/1 and true/false; xgboost changed the encoding between releases.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "1", "true":
		*b = true
	case "0", "false", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

var identityObjectives = map[string]bool{
	"":                     true,
	"reg:squarederror":     true,
	"reg:linear":           true,
	"reg:absoluteerror":    true,
	"reg:pseudohubererror": true,
	"reg:quantileerror":    true,
}

// parseBaseScore accepts "5E-1" as well as the bracketed "[5E-1]" newer releases write.
func parseBaseScore(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.5, nil
	}
	return strconv.ParseFloat(s, 64)
}

func LoadXGBModel(path string) (*XGBModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return ParseXGBModel(raw)
}

func ParseXGBModel(raw []byte) (*XGBModel, error) {
	var f xgbFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	l := f.Learner
	if name := l.GradientBooster.Name; name != "" && name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", name)
	}
	if !identityObjectives[l.Objective.Name] {
		return nil, fmt.Errorf("unsupported objective %q", l.Objective.Name)
	}
	base, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, fmt.Errorf("base_score: %w", err)
	}
	m := &XGBModel{baseScore: base, numFeat: len(FeatureOrder)}
	if n, err := strconv.Atoi(strings.TrimSpace(l.LearnerModelParam.NumFeature)); err == nil && n > 0 {
		m.numFeat = n
	}
	if len(l.GradientBooster.Model.Trees) == 0 {
		return nil, errors.New("model has no trees")
	}
	for i, t := range l.GradientBooster.Model.Trees {
		ct, err := compileTree(t)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		m.trees = append(m.trees, ct)
	}
	return m, nil
}

func compileTree(t xgbTree) (tree, error) {
	n := len(t.LeftChildren)
	if n == 0 {
		return tree{}, errors.New("empty tree")
	}
	if len(t.RightChildren) != n || len(t.SplitIndices) != n || len(t.SplitConditions) != n {
		return tree{}, errors.New("node arrays differ in length")
	}
	out := tree{
		left:        t.LeftChildren,
		right:       t.RightChildren,
		splitIndex:  t.SplitIndices,
		splitCond:   t.SplitConditions,
		defaultLeft: make([]bool, n),
	}
	for i := 0; i < n && i < len(t.DefaultLeft); i++ {
		out.defaultLeft[i] = bool(t.DefaultLeft[i])
	}
	for i := 0; i < n; i++ {
		l, r := out.left[i], out.right[i]
		if l == -1 {
			continue
		}
		if l <= i || l >= n || r <= i || r >= n {
			return tree{}, fmt.Errorf("node %d has invalid children", i)
		}
	}
	return out, nil
}

// leaf walks the tree: x < condition goes left, missing values follow default_left.
func (t tree) leaf(x []float64) float64 {
	i := 0
	for t.left[i] != -1 {
		idx := t.splitIndex[i]
		var v float64
		if idx >= 0 && idx < len(x) {
			v = x[idx]
		} else {
			v = math.NaN()
		}
		switch {
		case math.IsNaN(v):
			if t.defaultLeft[i] {
				i = t.left[i]
			} else {
				i = t.right[i]
			}
		case v < t.splitCond[i]:
			i = t.left[i]
		default:
			i = t.right[i]
		}
	}
	return t.splitCond[i]
}

// Margin is base_score plus the sum of the leaves.
func (m *XGBModel) Margin(x []float64) float64 {
	sum := m.baseScore
	for _, t := range m.trees {
		sum += t.leaf(x)
	}
	return sum
}

func (m *XGBModel) NumTrees() int { return len(m.trees) }

func (m *XGBModel) PredictNextReviewDays(latestScore, avgScore, attemptsCount, daysSinceLastAttempt float64) int {
	f := Sanitize(latestScore, avgScore, attemptsCount, daysSinceLastAttempt)
	y := m.Margin([]float64{f.LatestScore, f.AvgScore, float64(f.Attempts), f.DaysSince})
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return HeuristicDays(f)
	}
	return ClampDays(int(math.Round(math.Max(y, MinDays))))
}
