package services

import (
	"math"
	"time"
)

// StreakState is the streak slice of a stats row. The same rule runs at goal
// scope and user scope; the two streams are independent.
type StreakState struct {
	Current      int
	Longest      int
	StartedAt    *time.Time
	LastActivity *time.Time
}

// localDay truncates an instant to the owner's calendar day.
func localDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// AdvanceStreak applies one completion event to a streak:
// same calendar day as the last activity leaves the length alone, the very
// next day extends it, anything else starts over at 1.
func AdvanceStreak(state StreakState, completedAt time.Time, loc *time.Location) StreakState {
	day := localDay(completedAt, loc)

	switch {
	case state.LastActivity == nil:
		start := day
		state.Current = 1
		state.StartedAt = &start
	default:
		last := localDay(*state.LastActivity, loc)
		// Round so DST-shortened or -lengthened days still count as one.
		gap := int(math.Round(day.Sub(last).Hours() / 24))
		switch {
		case gap == 0:
			// another completion on an already-counted day
		case gap == 1:
			state.Current++
		default:
			start := day
			state.Current = 1
			state.StartedAt = &start
		}
	}

	if state.Current > state.Longest {
		state.Longest = state.Current
	}
	state.LastActivity = &day
	return state
}
