package ranking

import "errors"

var (
	// ErrUnanswered means a questionnaire answer is missing or out of range.
	ErrUnanswered = errors.New("question not answered")
	// ErrTiedResult means the submitted score does not produce a winner.
	ErrTiedResult = errors.New("score is tied, a decisive result is required")
	// ErrNoScore means a score union carries neither shape, or the wrong
	// shape for the sport's category.
	ErrNoScore = errors.New("score shape does not match sport category")
)
