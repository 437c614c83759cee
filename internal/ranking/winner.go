package ranking

import (
	"fmt"

	"github.com/sastavapp/sastav-server/internal/sastav"
)

// ResolveWinner determines the winning team from a submitted score.
//
// Racket sports count a set for a team only when its score is strictly
// greater; the team with strictly more sets wins. Team sports compare the two
// aggregate totals. A tie in either scheme is not resolvable and is rejected,
// settlement requires a decisive result.
func ResolveWinner(score sastav.Score, category sastav.SportCategory) (sastav.TeamNumber, error) {
	switch category {
	case sastav.CategoryRacket:
		if score.Racket == nil {
			return 0, ErrNoScore
		}
		return resolveSets(score.Racket.Sets)
	case sastav.CategoryTeam:
		if score.Team == nil {
			return 0, ErrNoScore
		}
		switch {
		case score.Team.My > score.Team.Opp:
			return sastav.Team1, nil
		case score.Team.Opp > score.Team.My:
			return sastav.Team2, nil
		default:
			return 0, fmt.Errorf("%d-%d: %w", score.Team.My, score.Team.Opp, ErrTiedResult)
		}
	default:
		return 0, fmt.Errorf("unknown sport category %q", category)
	}
}

func resolveSets(sets []sastav.SetScore) (sastav.TeamNumber, error) {
	if len(sets) == 0 {
		return 0, ErrNoScore
	}
	won1, won2 := 0, 0
	for _, set := range sets {
		switch {
		case set.Team1 > set.Team2:
			won1++
		case set.Team2 > set.Team1:
			won2++
		}
		// A drawn set counts for neither side.
	}
	switch {
	case won1 > won2:
		return sastav.Team1, nil
	case won2 > won1:
		return sastav.Team2, nil
	default:
		return 0, fmt.Errorf("%d sets each: %w", won1, ErrTiedResult)
	}
}

// ValidateScoreShape checks that a submitted score carries exactly the shape
// required by the sport's category. Used at submission time so a bad payload
// is rejected before it can reach settlement.
func ValidateScoreShape(score sastav.Score, category sastav.SportCategory) error {
	switch category {
	case sastav.CategoryRacket:
		if score.Racket == nil || score.Team != nil {
			return ErrNoScore
		}
		if len(score.Racket.Sets) == 0 {
			return ErrNoScore
		}
	case sastav.CategoryTeam:
		if score.Team == nil || score.Racket != nil {
			return ErrNoScore
		}
	default:
		return fmt.Errorf("unknown sport category %q", category)
	}
	return nil
}
