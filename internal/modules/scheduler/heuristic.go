package scheduler

import "math"

const (
	MinDays = 1
	MaxDays = 60

	minEase  = 1.3
	easeSpan = 1.2
)

// Predictor maps review features to the next interval in days. Implementations never fail:
// malformed input is clamped and the result is always in [MinDays, MaxDays].
type Predictor interface {
	PredictNextReviewDays(latestScore, avgScore, attemptsCount, daysSinceLastAttempt float64) int
}

type Features struct {
	LatestScore float64
	AvgScore    float64
	Attempts    int
	DaysSince   float64
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(10, v))
}

// Sanitize clamps scores to [0,10], floors attempts at 1 and days at 0. NaN and infinite
// values fall back to those defaults.
func Sanitize(latest, avg, attempts, days float64) Features {
	f := Features{LatestScore: clampScore(latest), AvgScore: clampScore(avg), Attempts: 1}
	if !math.IsNaN(attempts) && !math.IsInf(attempts, 0) && attempts > 1 {
		f.Attempts = int(math.Min(math.Floor(attempts), math.MaxInt32))
	}
	if !math.IsNaN(days) && !math.IsInf(days, 0) && days > 0 {
		f.DaysSince = days
	}
	return f
}

func ClampDays(d int) int {
	if d < MinDays {
		return MinDays
	}
	if d > MaxDays {
		return MaxDays
	}
	return d
}

// EaseFactor is linear in the mean of the two scores, from 1.3 at zero to 2.5 at ten.
func EaseFactor(latest, avg float64) float64 {
	x := (latest + avg) / 20
	x = math.Max(0, math.Min(1, x))
	return minEase + easeSpan*x
}

func band(score float64) int {
	switch {
	case score >= 7:
		return 2
	case score >= 5:
		return 1
	default:
		return 0
	}
}

var (
	firstIntervals  = [3]int{1, 2, 3}
	secondIntervals = [3]int{3, 5, 7}
)

type Heuristic struct{}

func (Heuristic) PredictNextReviewDays(latestScore, avgScore, attemptsCount, daysSinceLastAttempt float64) int {
	return HeuristicDays(Sanitize(latestScore, avgScore, attemptsCount, daysSinceLastAttempt))
}

func HeuristicDays(f Features) int {
	var interval int
	switch f.Attempts {
	case 1:
		interval = firstIntervals[band(f.LatestScore)]
	case 2:
		interval = secondIntervals[band(f.LatestScore)]
	default:
		ef := EaseFactor(f.LatestScore, f.AvgScore)
		interval = int(math.Min(math.Round(math.Max(f.DaysSince, 1)*ef), MaxDays*2))
	}

	switch {
	case f.LatestScore < 5:
		interval = interval / 2
		if interval < 1 {
			interval = 1
		}
	case f.LatestScore >= 9:
		interval = int(math.Ceil(float64(interval) * 1.3))
	}
	return ClampDays(interval)
}
