package quiz

import "math/rand"

// Shuffle is an in-place Fisher-Yates shuffle.
func Shuffle[T any](items []T, r *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// singleLetter reports whether every question shares one correct letter.
func singleLetter(ps []Parsed) bool {
	if len(ps) < 2 {
		return false
	}
	for _, p := range ps[1:] {
		if p.Correct != ps[0].Correct {
			return false
		}
	}
	return true
}
