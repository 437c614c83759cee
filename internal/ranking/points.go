package ranking

import (
	"math"

	"github.com/sastavapp/sastav-server/internal/sastav"
)

// Exchange holds the signed rank delta applied to every member of each team.
type Exchange struct {
	Team1 int
	Team2 int
}

// PointsChange computes the per-team rank deltas for a settled match.
//
// The split depends on the gap between the two team averages: the closer the
// teams, the smaller the spread between winning as the favorite and winning as
// the underdog. The 100-250 band and the 250+ band intentionally carry the
// same values; this mirrors the shipped product behavior and is pinned by a
// test, so any deliberate change shows up as an explicit diff.
//
// On equal averages team 1 takes the higher-rated role.
func PointsChange(avg1, avg2 float64, winner sastav.TeamNumber) Exchange {
	diff := math.Abs(avg1 - avg2)

	var higherWin, higherLoss, lowerWin, lowerLoss int
	if diff < 100 {
		higherWin, higherLoss = 15, -20
		lowerWin, lowerLoss = 20, -15
	} else {
		higherWin, higherLoss = 10, -25
		lowerWin, lowerLoss = 25, -10
	}

	team1Higher := avg1 >= avg2

	var ex Exchange
	switch {
	case team1Higher && winner == sastav.Team1:
		ex = Exchange{Team1: higherWin, Team2: lowerLoss}
	case team1Higher && winner == sastav.Team2:
		ex = Exchange{Team1: higherLoss, Team2: lowerWin}
	case !team1Higher && winner == sastav.Team1:
		ex = Exchange{Team1: lowerWin, Team2: higherLoss}
	default:
		ex = Exchange{Team1: lowerLoss, Team2: higherWin}
	}
	return ex
}

// TeamAverage computes the average rank of a roster. An empty roster defaults
// to DefaultRank so the present side still settles against a neutral opponent.
func TeamAverage(ranks []int) float64 {
	if len(ranks) == 0 {
		return DefaultRank
	}
	sum := 0
	for _, r := range ranks {
		sum += r
	}
	return float64(sum) / float64(len(ranks))
}
