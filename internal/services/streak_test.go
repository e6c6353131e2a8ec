package services

import (
	"testing"
	"time"
)

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestAdvanceStreakConsecutiveDays(t *testing.T) {
	var state StreakState
	for day := 1; day <= 5; day++ {
		state = AdvanceStreak(state, at(2024, time.March, day, 20), time.UTC)
	}

	if state.Current != 5 || state.Longest != 5 {
		t.Fatalf("got current=%d longest=%d, want 5/5", state.Current, state.Longest)
	}
	if state.StartedAt == nil || state.StartedAt.Day() != 1 {
		t.Errorf("streak start should stay at day 1, got %v", state.StartedAt)
	}
}

func TestAdvanceStreakSameDayDoesNotDoubleCount(t *testing.T) {
	var state StreakState
	state = AdvanceStreak(state, at(2024, time.March, 1, 8), time.UTC)
	state = AdvanceStreak(state, at(2024, time.March, 1, 22), time.UTC)

	if state.Current != 1 {
		t.Fatalf("two completions on one day: got current=%d, want 1", state.Current)
	}
}

func TestAdvanceStreakGapResetsWithoutLoweringLongest(t *testing.T) {
	var state StreakState
	// Mon, Tue, Wed, (skip Thu), Fri
	state = AdvanceStreak(state, at(2024, time.March, 4, 9), time.UTC)
	state = AdvanceStreak(state, at(2024, time.March, 5, 9), time.UTC)
	state = AdvanceStreak(state, at(2024, time.March, 6, 9), time.UTC)
	state = AdvanceStreak(state, at(2024, time.March, 8, 9), time.UTC)

	if state.Current != 1 {
		t.Errorf("after the gap current should be 1, got %d", state.Current)
	}
	if state.Longest != 3 {
		t.Errorf("longest should keep the pre-gap run, got %d", state.Longest)
	}
	if state.StartedAt == nil || state.StartedAt.Day() != 8 {
		t.Errorf("streak start should move to the reset day, got %v", state.StartedAt)
	}
}

func TestAdvanceStreakUsesOwnerCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	var state StreakState
	// 03:00 UTC on the 2nd is still the evening of the 1st in New York;
	// 23:00 UTC on the 2nd is the 2nd. Local days are consecutive.
	state = AdvanceStreak(state, time.Date(2024, time.March, 2, 3, 0, 0, 0, time.UTC), loc)
	state = AdvanceStreak(state, time.Date(2024, time.March, 2, 23, 0, 0, 0, time.UTC), loc)

	if state.Current != 2 {
		t.Fatalf("local calendar days should both count: got current=%d, want 2", state.Current)
	}
}

func TestAdvanceStreakAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	var state StreakState
	// US DST starts 2024-03-10; March 10 is a 23-hour local day.
	state = AdvanceStreak(state, time.Date(2024, time.March, 9, 12, 0, 0, 0, loc), loc)
	state = AdvanceStreak(state, time.Date(2024, time.March, 10, 12, 0, 0, 0, loc), loc)
	state = AdvanceStreak(state, time.Date(2024, time.March, 11, 12, 0, 0, 0, loc), loc)

	if state.Current != 3 {
		t.Fatalf("DST-shortened day broke the streak: got current=%d, want 3", state.Current)
	}
}

func TestAdvanceStreakFirstCompletion(t *testing.T) {
	state := AdvanceStreak(StreakState{}, at(2024, time.March, 15, 10), time.UTC)
	if state.Current != 1 || state.Longest != 1 {
		t.Fatalf("first completion: got current=%d longest=%d, want 1/1", state.Current, state.Longest)
	}
	if state.StartedAt == nil || state.LastActivity == nil {
		t.Fatal("first completion must set start and last-activity days")
	}
}
