package services

import (
	"fmt"
	"time"

	"github.com/summitapp/summit-api/internal/models"
)

// NextOccurrence advances a scheduled date by one recurrence step. The
// time-of-day component is preserved. Monthly steps clamp to the last day of
// the target month (Jan 31 -> Feb 28/29), never skip a month.
func NextOccurrence(date time.Time, repeatType string) (time.Time, error) {
	switch repeatType {
	case models.RepeatDaily:
		return date.AddDate(0, 0, 1), nil
	case models.RepeatEveryOtherDay:
		return date.AddDate(0, 0, 2), nil
	case models.RepeatWeekly:
		return date.AddDate(0, 0, 7), nil
	case models.RepeatMonthly:
		return addMonthClamped(date), nil
	}
	return time.Time{}, fmt.Errorf("next occurrence: unknown repeat type %q", repeatType)
}

// addMonthClamped moves to the same day-of-month one month later, clamping to
// the target month's last day when it is shorter. time.AddDate normalizes
// overflow (Jan 31 + 1 month = Mar 2/3), so the clamp is done by hand.
func addMonthClamped(date time.Time) time.Time {
	year, month, day := date.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, date.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// recurrenceBound is min(repeatUntil, goalDeadline); repeatUntil unset means
// the goal deadline alone bounds the series.
func recurrenceBound(repeatUntil *time.Time, goalDeadline time.Time) time.Time {
	if repeatUntil != nil && repeatUntil.Before(goalDeadline) {
		return *repeatUntil
	}
	return goalDeadline
}

// ValidateRecurrence re-checks what the request layer should already have
// constrained. Rejected input never reaches the expander.
func ValidateRecurrence(template models.Task, goalDeadline time.Time) error {
	if !models.ValidRepeatType(template.RepeatType) {
		return fmt.Errorf("%w: unknown repeat type %q", ErrValidation, template.RepeatType)
	}
	if template.ScheduledAt.After(goalDeadline) {
		return fmt.Errorf("%w: scheduled date is past the goal deadline", ErrValidation)
	}
	return nil
}

// ExpandOccurrences materializes the bounded occurrence series for a task
// template. The template itself is the first occurrence; generated
// occurrences copy title, description and time-of-day and point back at the
// template through ParentTaskID. Re-running with the same inputs yields the
// same series.
//
// The second result is true when the recurrence bound already precedes the
// first step, so only the original occurrence exists ("no recurrence
// possible" for the caller to surface, not an error). Bounds that already
// precede the scheduled date are that same degenerate case, not a failure;
// rejecting them at creation time is ValidateRecurrence's job.
func ExpandOccurrences(template models.Task, goalDeadline time.Time) ([]models.Task, bool, error) {
	if !models.ValidRepeatType(template.RepeatType) {
		return nil, false, fmt.Errorf("%w: unknown repeat type %q", ErrValidation, template.RepeatType)
	}

	occurrences := []models.Task{template}
	if template.RepeatType == models.RepeatNone || !template.IsRepeating {
		return occurrences, false, nil
	}

	bound := recurrenceBound(template.RepeatUntil, goalDeadline)
	if bound.Before(template.ScheduledAt) {
		return occurrences, true, nil
	}
	current := template.ScheduledAt
	for {
		next, err := NextOccurrence(current, template.RepeatType)
		if err != nil {
			return nil, false, err
		}
		if next.After(bound) {
			break
		}
		occurrences = append(occurrences, models.Task{
			GoalID:       template.GoalID,
			UserID:       template.UserID,
			Title:        template.Title,
			Description:  template.Description,
			ScheduledAt:  next,
			TimeOfDay:    template.TimeOfDay,
			IsRepeating:  true,
			RepeatType:   template.RepeatType,
			RepeatUntil:  template.RepeatUntil,
			ParentTaskID: &template.ID,
		})
		current = next
	}

	return occurrences, len(occurrences) == 1, nil
}
