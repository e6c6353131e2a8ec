package services

import (
	"testing"
	"time"

	"github.com/summitapp/summit-api/internal/models"
)

func TestApplyProgressAccumulatesToThreshold(t *testing.T) {
	row := models.Achievement{Type: models.MilestoneTaskCompletion, Threshold: 3}
	now := at(2024, time.March, 1, 12)

	if ApplyProgress(&row, 1, now) {
		t.Fatal("threshold not reached yet")
	}
	if ApplyProgress(&row, 1, now) {
		t.Fatal("threshold not reached yet")
	}
	if !ApplyProgress(&row, 1, now) {
		t.Fatal("third delta should complete the milestone")
	}
	if !row.IsCompleted || row.CompletedAt == nil {
		t.Fatal("completion flag and timestamp must be set")
	}
}

func TestApplyProgressCeilingAndFrozenCompletion(t *testing.T) {
	row := models.Achievement{Type: models.MilestoneTaskCompletion, Threshold: 5}
	first := at(2024, time.March, 1, 12)
	later := at(2024, time.March, 9, 12)

	if !ApplyProgress(&row, 10, first) {
		t.Fatal("overshooting delta should complete the milestone")
	}
	if row.CurrentValue != 5 {
		t.Fatalf("value must cap at threshold, got %d", row.CurrentValue)
	}

	completedAt := *row.CompletedAt
	if ApplyProgress(&row, 3, later) {
		t.Fatal("completedNow must fire exactly once")
	}
	if row.CurrentValue != 5 {
		t.Fatalf("post-completion deltas must have no effect, got %d", row.CurrentValue)
	}
	if !row.CompletedAt.Equal(completedAt) {
		t.Fatal("completedAt must be set exactly once")
	}
}

func TestApplyProgressIgnoresNegativeDelta(t *testing.T) {
	row := models.Achievement{Threshold: 5, CurrentValue: 2}
	ApplyProgress(&row, -3, at(2024, time.March, 1, 12))
	if row.CurrentValue != 2 {
		t.Fatalf("progress must be monotone, got %d", row.CurrentValue)
	}
}

func TestRaiseProgressTo(t *testing.T) {
	row := models.Achievement{Type: models.MilestoneStreak, Threshold: 7, CurrentValue: 3}
	now := at(2024, time.March, 1, 12)

	if RaiseProgressTo(&row, 2, now) {
		t.Fatal("lowering must be ignored")
	}
	if row.CurrentValue != 3 {
		t.Fatalf("lowering must be ignored, got %d", row.CurrentValue)
	}

	if RaiseProgressTo(&row, 5, now) {
		t.Fatal("5 of 7 is not completion")
	}
	if row.CurrentValue != 5 {
		t.Fatalf("got %d, want 5", row.CurrentValue)
	}

	if !RaiseProgressTo(&row, 9, now) {
		t.Fatal("raising past the threshold should complete")
	}
	if row.CurrentValue != 7 {
		t.Fatalf("value must cap at threshold, got %d", row.CurrentValue)
	}
}

func TestDefaultCatalogKeysAreUnique(t *testing.T) {
	seen := map[[2]interface{}]bool{}
	for _, seed := range DefaultCatalog {
		if !models.ValidMilestoneType(seed.Type) {
			t.Errorf("catalog entry %q has unknown type %q", seed.Title, seed.Type)
		}
		if seed.Threshold <= 0 {
			t.Errorf("catalog entry %q has non-positive threshold", seed.Title)
		}
		key := [2]interface{}{seed.Type, seed.Threshold}
		if seen[key] {
			t.Errorf("duplicate catalog key %v", key)
		}
		seen[key] = true
	}
}
