package ranking

import (
	"fmt"
	"math"
)

// Rank range assigned after the onboarding questionnaire.
const (
	StartingRankMin = 250
	StartingRankMax = 500
)

// DefaultRank is the fallback rank for a player with no SportRank row yet.
const DefaultRank = 1000

// NumQuestions is the number of questionnaire questions, each with exactly
// four ordered options.
const NumQuestions = 4

// questionPoints maps answer index to points, per question. The tables are
// fixed product values, not configuration.
var questionPoints = [NumQuestions][4]int{
	{0, 150, 300, 600}, // years played
	{0, 100, 200, 400}, // hours per week
	{0, 200, 400, 600}, // self-rated skill
	{0, 150, 300, 500}, // competitiveness
}

// maxPoints is the sum of the highest option of every question.
const maxPoints = 600 + 400 + 600 + 500

// CalculateStartingRank converts the four questionnaire answer indices into a
// starting rank in [StartingRankMin, StartingRankMax]. Every answer must be a
// valid index in [0,3]; an unanswered question (-1) or any out-of-range index
// is rejected without computing anything.
func CalculateStartingRank(answers [NumQuestions]int) (int, error) {
	total := 0
	for q, a := range answers {
		if a < 0 || a > 3 {
			return 0, fmt.Errorf("question %d: %w", q+1, ErrUnanswered)
		}
		total += questionPoints[q][a]
	}

	span := float64(StartingRankMax - StartingRankMin)
	rank := float64(StartingRankMin) + float64(total)/float64(maxPoints)*span
	return int(math.Round(rank)), nil
}
