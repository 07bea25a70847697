package progress

import (
	"math"

	types "github.com/aryansondharva/Aura/internal/domain"
)

const CompletedThreshold = 7.0

// Score is correct/total scaled to [0,10]; zero questions score zero.
func Score(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}
	return float64(correct) / float64(total) * 10
}

// TopicStatus is Completed only strictly above the threshold.
func TopicStatus(score float64) string {
	if score > CompletedThreshold {
		return types.TopicStatusCompleted
	}
	return types.TopicStatusWeak
}

func Mastered(score float64) bool { return score > CompletedThreshold }

// RunningMean folds the newest score into an average over prevCount earlier scores.
func RunningMean(prevAvg float64, prevCount int, score float64) float64 {
	if prevCount <= 0 || math.IsNaN(prevAvg) {
		return score
	}
	return (prevAvg*float64(prevCount) + score) / float64(prevCount+1)
}
