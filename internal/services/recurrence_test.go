package services

import (
	"errors"
	"testing"
	"time"

	"github.com/summitapp/summit-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestNextOccurrenceSteps(t *testing.T) {
	start := date(2024, time.January, 10)

	tests := []struct {
		repeatType string
		want       time.Time
	}{
		{models.RepeatDaily, date(2024, time.January, 11)},
		{models.RepeatEveryOtherDay, date(2024, time.January, 12)},
		{models.RepeatWeekly, date(2024, time.January, 17)},
		{models.RepeatMonthly, date(2024, time.February, 10)},
	}

	for _, tt := range tests {
		got, err := NextOccurrence(start, tt.repeatType)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.repeatType, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.repeatType, got, tt.want)
		}
	}
}

func TestNextOccurrenceWeeklyKeepsWeekday(t *testing.T) {
	start := date(2024, time.January, 15) // a Monday
	got, err := NextOccurrence(start, models.RepeatWeekly)
	if err != nil {
		t.Fatal(err)
	}
	if got.Weekday() != start.Weekday() {
		t.Errorf("weekday changed: %v -> %v", start.Weekday(), got.Weekday())
	}
}

func TestNextOccurrenceMonthlyClamps(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"jan31 leap year", date(2024, time.January, 31), date(2024, time.February, 29)},
		{"jan31 non-leap", date(2023, time.January, 31), date(2023, time.February, 28)},
		{"feb28 to mar28", date(2023, time.February, 28), date(2023, time.March, 28)},
		{"feb29 to mar29", date(2024, time.February, 29), date(2024, time.March, 29)},
		{"may31 to jun30", date(2024, time.May, 31), date(2024, time.June, 30)},
		{"dec15 to jan15", date(2024, time.December, 15), date(2025, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.start, models.RepeatMonthly)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrencePreservesTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.January, 31, 18, 45, 30, 0, time.UTC)
	got, err := NextOccurrence(start, models.RepeatMonthly)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hour() != 18 || got.Minute() != 45 || got.Second() != 30 {
		t.Errorf("time of day not preserved: %v", got)
	}
}

func TestNextOccurrenceUnknownType(t *testing.T) {
	if _, err := NextOccurrence(date(2024, time.January, 1), "fortnightly"); err == nil {
		t.Fatal("expected error for unknown repeat type")
	}
}

func repeatingTemplate(repeatType string, scheduled time.Time, until *time.Time) models.Task {
	return models.Task{
		ID:          7,
		GoalID:      3,
		UserID:      1,
		Title:       "practice",
		ScheduledAt: scheduled,
		TimeOfDay:   models.TimeOfDayMorning,
		IsRepeating: true,
		RepeatType:  repeatType,
		RepeatUntil: until,
	}
}

func TestExpandWeeklyBoundedByRepeatUntil(t *testing.T) {
	until := date(2024, time.February, 5)
	template := repeatingTemplate(models.RepeatWeekly, date(2024, time.January, 15), &until)

	occurrences, truncated, err := ExpandOccurrences(template, date(2024, time.June, 1))
	if err != nil {
		t.Fatal(err)
	}
	if truncated {
		t.Fatal("series is not degenerate")
	}

	want := []time.Time{
		date(2024, time.January, 15),
		date(2024, time.January, 22),
		date(2024, time.January, 29),
		date(2024, time.February, 5),
	}
	if len(occurrences) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(occurrences), len(want))
	}
	for i, w := range want {
		if !occurrences[i].ScheduledAt.Equal(w) {
			t.Errorf("occurrence %d: got %v, want %v", i, occurrences[i].ScheduledAt, w)
		}
	}
}

func TestExpandBoundedByGoalDeadlineWhenNoRepeatUntil(t *testing.T) {
	template := repeatingTemplate(models.RepeatDaily, date(2024, time.March, 1), nil)

	occurrences, _, err := ExpandOccurrences(template, date(2024, time.March, 5))
	if err != nil {
		t.Fatal(err)
	}
	if len(occurrences) != 5 {
		t.Fatalf("got %d occurrences, want 5", len(occurrences))
	}
	last := occurrences[len(occurrences)-1].ScheduledAt
	if last.After(date(2024, time.March, 5)) {
		t.Errorf("last occurrence %v exceeds the deadline", last)
	}
}

func TestExpandDatesStrictlyIncreaseWithinBound(t *testing.T) {
	until := date(2024, time.December, 31)
	for _, repeatType := range []string{
		models.RepeatDaily, models.RepeatEveryOtherDay, models.RepeatWeekly, models.RepeatMonthly,
	} {
		template := repeatingTemplate(repeatType, date(2024, time.January, 31), &until)
		occurrences, _, err := ExpandOccurrences(template, date(2025, time.June, 1))
		if err != nil {
			t.Fatalf("%s: %v", repeatType, err)
		}
		bound := until
		for i := 1; i < len(occurrences); i++ {
			if !occurrences[i].ScheduledAt.After(occurrences[i-1].ScheduledAt) {
				t.Errorf("%s: occurrence %d does not increase", repeatType, i)
			}
			if occurrences[i].ScheduledAt.After(bound) {
				t.Errorf("%s: occurrence %d exceeds bound", repeatType, i)
			}
		}
	}
}

func TestExpandIsIdempotent(t *testing.T) {
	until := date(2024, time.April, 1)
	template := repeatingTemplate(models.RepeatEveryOtherDay, date(2024, time.March, 10), &until)
	deadline := date(2024, time.June, 1)

	first, _, err := ExpandOccurrences(template, deadline)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := ExpandOccurrences(template, deadline)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].ScheduledAt.Equal(second[i].ScheduledAt) {
			t.Errorf("occurrence %d differs between runs", i)
		}
	}
}

func TestExpandGeneratedOccurrencesPointAtTemplate(t *testing.T) {
	until := date(2024, time.January, 20)
	template := repeatingTemplate(models.RepeatDaily, date(2024, time.January, 18), &until)

	occurrences, _, err := ExpandOccurrences(template, date(2024, time.June, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(occurrences) < 2 {
		t.Fatal("expected generated occurrences")
	}
	if occurrences[0].ParentTaskID != nil {
		t.Error("template occurrence must not point at itself")
	}
	for _, occ := range occurrences[1:] {
		if occ.ParentTaskID == nil || *occ.ParentTaskID != template.ID {
			t.Errorf("occurrence %v missing parent task id", occ.ScheduledAt)
		}
		if occ.GoalID != template.GoalID || occ.TimeOfDay != template.TimeOfDay || occ.Title != template.Title {
			t.Errorf("occurrence %v did not copy template fields", occ.ScheduledAt)
		}
	}
}

func TestExpandDegenerateBoundYieldsSingleOccurrence(t *testing.T) {
	past := date(2024, time.January, 1)
	template := repeatingTemplate(models.RepeatWeekly, date(2024, time.January, 15), &past)

	occurrences, truncated, err := ExpandOccurrences(template, date(2024, time.June, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(occurrences) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occurrences))
	}
	if !truncated {
		t.Error("degenerate bound should be reported")
	}
}

func TestExpandNonRepeatingYieldsTemplateOnly(t *testing.T) {
	template := models.Task{
		ScheduledAt: date(2024, time.January, 15),
		RepeatType:  models.RepeatNone,
	}
	occurrences, truncated, err := ExpandOccurrences(template, date(2024, time.June, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(occurrences) != 1 || truncated {
		t.Fatalf("non-repeating task should yield exactly the template, got %d (truncated=%v)", len(occurrences), truncated)
	}
}

func TestValidateRecurrence(t *testing.T) {
	deadline := date(2024, time.June, 1)

	bad := repeatingTemplate("yearly", date(2024, time.January, 1), nil)
	if err := ValidateRecurrence(bad, deadline); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown repeat type: got %v, want ErrValidation", err)
	}

	late := repeatingTemplate(models.RepeatDaily, date(2024, time.July, 1), nil)
	if err := ValidateRecurrence(late, deadline); !errors.Is(err, ErrValidation) {
		t.Errorf("scheduled past deadline: got %v, want ErrValidation", err)
	}

	ok := repeatingTemplate(models.RepeatDaily, date(2024, time.May, 1), nil)
	if err := ValidateRecurrence(ok, deadline); err != nil {
		t.Errorf("valid template rejected: %v", err)
	}
}
