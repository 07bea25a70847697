package scheduler

import (
	"strings"
	"time"

	"github.com/aryansondharva/Aura/internal/platform/logger"
)

// NewPredictor loads the model at modelPath, falling back to the heuristic when the path is
// empty or the model cannot be loaded.
func NewPredictor(log *logger.Logger, modelPath string) Predictor {
	modelPath = strings.TrimSpace(modelPath)
	if modelPath == "" {
		log.Info("no scheduler model configured; using heuristic")
		return Heuristic{}
	}
	m, err := LoadXGBModel(modelPath)
	if err != nil {
		log.Warn("scheduler model unavailable; using heuristic", "path", modelPath, "error", err)
		return Heuristic{}
	}
	if m.numFeat != len(FeatureOrder) {
		log.Warn("scheduler model feature count differs", "path", modelPath, "num_feature", m.numFeat, "expected", len(FeatureOrder))
	}
	log.Info("scheduler model loaded", "path", modelPath, "trees", m.NumTrees())
	return m
}

// Today is the calendar day of t in UTC, at midnight.
func Today(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func NextReviewDate(today time.Time, days int) time.Time {
	return Today(today).AddDate(0, 0, days)
}

// DaysBetween counts whole calendar days from a to b, never negative.
func DaysBetween(a, b time.Time) int {
	d := int(Today(b).Sub(Today(a)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
