package deadlock

import (
	"fmt"

	"github.com/sarchlab/dasim/sim"
)

// A Limiter aborts simulations that run for too many rounds.
type Limiter struct {
	maxRounds int
}

// NewLimiter creates a limiter that allows rounds 0 to maxRounds-1.
func NewLimiter(maxRounds int) *Limiter {
	if maxRounds <= 0 {
		panic(fmt.Sprintf("max rounds must be positive, got %d", maxRounds))
	}

	return &Limiter{maxRounds: maxRounds}
}

// MaxRounds returns the round cap.
func (l *Limiter) MaxRounds() int {
	return l.maxRounds
}

// Check returns an error if the next round may not start. The error reports
// the number of completed rounds, which equals the cap.
func (l *Limiter) Check(nextRound int) error {
	if nextRound < l.maxRounds {
		return nil
	}

	return &sim.RoundLimitExceededError{Round: nextRound, Max: l.maxRounds}
}
