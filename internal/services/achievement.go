package services

import (
	"time"

	"github.com/summitapp/summit-api/internal/models"
	"gorm.io/gorm"
)

// AchievementSeed is one catalog entry. The catalog is immutable
// configuration; each new user gets a one-time copy at registration.
type AchievementSeed struct {
	Type        string
	Title       string
	Description string
	Threshold   int
}

var DefaultCatalog = []AchievementSeed{
	{models.MilestoneTaskCompletion, "First Step", "Complete your first task", 1},
	{models.MilestoneTaskCompletion, "Getting Things Done", "Complete 25 tasks", 25},
	{models.MilestoneTaskCompletion, "Centurion", "Complete 100 tasks", 100},
	{models.MilestoneStreak, "Warming Up", "Keep a 3-day streak", 3},
	{models.MilestoneStreak, "Momentum", "Keep a 7-day streak", 7},
	{models.MilestoneStreak, "Unstoppable", "Keep a 30-day streak", 30},
	{models.MilestoneGoalCompletion, "Summit Reached", "Complete your first goal", 1},
	{models.MilestoneGoalCompletion, "Peak Collector", "Complete 10 goals", 10},
	{models.MilestoneConsistency, "Punctual", "Complete 20 tasks on time", 20},
}

// SeedAchievements copies the catalog for a new user. Existing rows with the
// same (user, type, threshold) key are left alone, so seeding is idempotent.
func SeedAchievements(db *gorm.DB, userID uint) error {
	for _, seed := range DefaultCatalog {
		var count int64
		if err := db.Model(&models.Achievement{}).
			Where("user_id = ? AND type = ? AND threshold = ?", userID, seed.Type, seed.Threshold).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		row := models.Achievement{
			UserID:      userID,
			Type:        seed.Type,
			Title:       seed.Title,
			Description: seed.Description,
			Threshold:   seed.Threshold,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// ApplyProgress advances an achievement by delta, capped at the threshold.
// Reports true exactly once, on the update that crosses the threshold; later
// deltas are accepted but have no observable effect.
func ApplyProgress(a *models.Achievement, delta int, now time.Time) bool {
	if a.IsCompleted {
		return false
	}
	if delta < 0 {
		delta = 0
	}
	a.CurrentValue += delta
	if a.CurrentValue > a.Threshold {
		a.CurrentValue = a.Threshold
	}
	if a.CurrentValue >= a.Threshold {
		a.IsCompleted = true
		completed := now
		a.CompletedAt = &completed
		return true
	}
	return false
}

// RaiseProgressTo lifts an achievement's progress to an absolute value when
// it is higher than the current one. Streak milestones track the longest
// streak seen, not a sum of deltas.
func RaiseProgressTo(a *models.Achievement, value int, now time.Time) bool {
	if value <= a.CurrentValue {
		return false
	}
	return ApplyProgress(a, value-a.CurrentValue, now)
}
