package rating

import "math"

// KFactor controls how far a single result moves a rating.
const KFactor = 32

// DefaultRating is assigned to players seen for the first time.
const DefaultRating = 1500

// Expected returns the logistic expected score of a rated side A
// against side B: 1 / (1 + 10^((b-a)/400)).
func Expected(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}

// Delta is the signed rating adjustment for a side that scored actual
// (1 win, 0 loss) against an expected score, rounded to the nearest point.
func Delta(actual, expected float64) int {
	return int(math.Round(KFactor * (actual - expected)))
}
