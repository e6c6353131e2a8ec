package services

import (
	"errors"
	"sort"
	"time"

	"github.com/summitapp/summit-api/internal/cache"
	"github.com/summitapp/summit-api/internal/config"
	"github.com/summitapp/summit-api/internal/models"
	"gorm.io/gorm"
)

// RecomputeResult summarizes an administrative repair run.
type RecomputeResult struct {
	Diverged            bool               `json:"diverged"`
	PrunedOccurrences   int                `json:"prunedOccurrences"`
	AchievementsUpdated []AchievementEvent `json:"achievementsUpdated"`
}

// foldEvent is one point of the chronological task/goal history.
type foldEvent struct {
	at   time.Time
	task *models.Task
	goal *models.Goal
}

// Recompute rebuilds every derived row of one user as a pure fold over the
// full task/goal history in completion order, using the same step functions
// as the incremental path. It also prunes not-yet-completed future
// occurrences that a shortened goal deadline left stranded beyond
// min(repeatUntil, deadline).
//
// Divergence between the stored incremental state and the fold result is
// informational: it is logged, the fold result wins, and no error reaches
// the caller.
func (a *Aggregator) Recompute(userID uint) (*RecomputeResult, error) {
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	loc := user.Location()

	mu := a.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	result := &RecomputeResult{}
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var goals []models.Goal
		if err := tx.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
			return err
		}
		var tasks []models.Task
		if err := tx.Where("user_id = ?", userID).Find(&tasks).Error; err != nil {
			return err
		}

		pruned, err := pruneStrandedOccurrences(tx, goals, tasks)
		if err != nil {
			return err
		}
		result.PrunedOccurrences = pruned

		events := buildHistory(goals, tasks)

		userStats := models.UserStats{UserID: userID}
		goalStats := make(map[uint]*models.GoalStats)

		var achievements []models.Achievement
		if err := a.forUpdate(tx).Where("user_id = ?", userID).Find(&achievements).Error; err != nil {
			return err
		}
		replayed := resetForReplay(achievements)

		for _, ev := range events {
			if ev.task != nil {
				task := *ev.task
				applyTaskToUserStats(&userStats, task, ev.at, loc)
				gs, ok := goalStats[task.GoalID]
				if !ok {
					gs = &models.GoalStats{GoalID: task.GoalID, UserID: userID}
					goalStats[task.GoalID] = gs
				}
				applyTaskToGoalStats(gs, task, ev.at, loc)

				for i := range achievements {
					row := &achievements[i]
					if !replayed[row.ID] {
						continue
					}
					var completedNow bool
					switch row.Type {
					case models.MilestoneTaskCompletion:
						completedNow = ApplyProgress(row, 1, ev.at)
					case models.MilestoneConsistency:
						if task.CompletedOnTime {
							completedNow = ApplyProgress(row, 1, ev.at)
						}
					case models.MilestoneStreak:
						completedNow = RaiseProgressTo(row, userStats.LongestStreak, ev.at)
					}
					if completedNow {
						result.AchievementsUpdated = append(result.AchievementsUpdated,
							AchievementEvent{Title: row.Title, Description: row.Description})
					}
				}
				continue
			}

			userStats.GoalsCompleted++
			for i := range achievements {
				row := &achievements[i]
				if replayed[row.ID] && row.Type == models.MilestoneGoalCompletion {
					if ApplyProgress(row, 1, ev.at) {
						result.AchievementsUpdated = append(result.AchievementsUpdated,
							AchievementEvent{Title: row.Title, Description: row.Description})
					}
				}
			}
		}

		diverged, err := a.storeRecomputed(tx, userID, &userStats, goalStats, achievements, replayed)
		if err != nil {
			return err
		}
		result.Diverged = diverged
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Diverged {
		config.Logger.Errorw("stats inconsistency repaired by full recompute",
			"userId", userID, "pruned", result.PrunedOccurrences)
	}

	keys := []string{cache.UserStatsKey(userID)}
	var goalIDs []uint
	a.db.Model(&models.GoalStats{}).Where("user_id = ?", userID).Pluck("goal_id", &goalIDs)
	for _, id := range goalIDs {
		keys = append(keys, cache.GoalStatsKey(id))
	}
	cache.Invalidate(keys...)

	return result, nil
}

// pruneStrandedOccurrences deletes repeating, not-yet-completed occurrences
// scheduled beyond their series bound. Completed occurrences are history and
// stay.
func pruneStrandedOccurrences(tx *gorm.DB, goals []models.Goal, tasks []models.Task) (int, error) {
	deadlines := make(map[uint]time.Time, len(goals))
	for _, g := range goals {
		deadlines[g.ID] = g.Deadline
	}

	pruned := 0
	for i := range tasks {
		task := tasks[i]
		if !task.IsRepeating || task.IsCompleted {
			continue
		}
		deadline, ok := deadlines[task.GoalID]
		if !ok {
			continue
		}
		if task.ScheduledAt.After(recurrenceBound(task.RepeatUntil, deadline)) {
			if err := tx.Delete(&models.Task{}, task.ID).Error; err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

// buildHistory merges completed tasks and completed goals into one
// chronological event stream.
func buildHistory(goals []models.Goal, tasks []models.Task) []foldEvent {
	var events []foldEvent
	for i := range tasks {
		if tasks[i].IsCompleted && tasks[i].CompletedAt != nil {
			events = append(events, foldEvent{at: *tasks[i].CompletedAt, task: &tasks[i]})
		}
	}
	for i := range goals {
		if goals[i].IsCompleted && goals[i].CompletedAt != nil {
			events = append(events, foldEvent{at: *goals[i].CompletedAt, goal: &goals[i]})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })
	return events
}

// resetForReplay zeroes the rows the fold will rebuild. Completed rows stay
// frozen (their progress and completedAt are final) and custom milestones
// have no event source in the history, so both are left alone.
func resetForReplay(achievements []models.Achievement) map[uint]bool {
	replayed := make(map[uint]bool)
	for i := range achievements {
		row := &achievements[i]
		if row.IsCompleted || row.Type == models.MilestoneCustom {
			continue
		}
		row.CurrentValue = 0
		replayed[row.ID] = true
	}
	return replayed
}

// storeRecomputed replaces the stored aggregate rows with the fold result
// and reports whether the incremental state had drifted.
func (a *Aggregator) storeRecomputed(tx *gorm.DB, userID uint, userStats *models.UserStats, goalStats map[uint]*models.GoalStats, achievements []models.Achievement, replayed map[uint]bool) (bool, error) {
	diverged := false

	var storedUser models.UserStats
	err := a.forUpdate(tx).Where("user_id = ?", userID).First(&storedUser).Error
	switch {
	case err == nil:
		if !userStatsEqual(&storedUser, userStats) {
			diverged = true
		}
		userStats.ID = storedUser.ID
		userStats.CreatedAt = storedUser.CreatedAt
		if err := tx.Save(userStats).Error; err != nil {
			return false, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(userStats).Error; err != nil {
			return false, err
		}
	default:
		return false, err
	}

	var storedGoals []models.GoalStats
	if err := a.forUpdate(tx).Where("user_id = ?", userID).Find(&storedGoals).Error; err != nil {
		return false, err
	}
	storedByGoal := make(map[uint]models.GoalStats, len(storedGoals))
	for _, s := range storedGoals {
		storedByGoal[s.GoalID] = s
	}

	for goalID, fresh := range goalStats {
		if stored, ok := storedByGoal[goalID]; ok {
			if !goalStatsEqual(&stored, fresh) {
				diverged = true
			}
			fresh.ID = stored.ID
			fresh.CreatedAt = stored.CreatedAt
		}
		if err := tx.Save(fresh).Error; err != nil {
			return false, err
		}
	}

	// A stored row whose goal has no completed history is drift too: the
	// fold produced nothing for it, so it must read as empty.
	for i := range storedGoals {
		stored := storedGoals[i]
		if _, ok := goalStats[stored.GoalID]; ok {
			continue
		}
		blank := models.GoalStats{
			ID:        stored.ID,
			GoalID:    stored.GoalID,
			UserID:    stored.UserID,
			CreatedAt: stored.CreatedAt,
		}
		if goalStatsEqual(&stored, &blank) {
			continue
		}
		diverged = true
		if err := tx.Save(&blank).Error; err != nil {
			return false, err
		}
	}

	for i := range achievements {
		row := &achievements[i]
		if !replayed[row.ID] {
			continue
		}
		if err := tx.Save(row).Error; err != nil {
			return false, err
		}
	}

	return diverged, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func userStatsEqual(a, b *models.UserStats) bool {
	return a.TasksCompleted == b.TasksCompleted &&
		a.CompletedOnTime == b.CompletedOnTime &&
		a.CompletedLate == b.CompletedLate &&
		a.CompletedMorning == b.CompletedMorning &&
		a.CompletedAfternoon == b.CompletedAfternoon &&
		a.CompletedEvening == b.CompletedEvening &&
		a.CompletedUnscheduled == b.CompletedUnscheduled &&
		a.RecurringCompleted == b.RecurringCompleted &&
		a.NonRecurringCompleted == b.NonRecurringCompleted &&
		a.GoalsCompleted == b.GoalsCompleted &&
		a.CurrentStreak == b.CurrentStreak &&
		a.LongestStreak == b.LongestStreak &&
		sameInstant(a.StreakStartedAt, b.StreakStartedAt) &&
		sameInstant(a.LastActivityDate, b.LastActivityDate)
}

func goalStatsEqual(a, b *models.GoalStats) bool {
	return a.TasksCompleted == b.TasksCompleted &&
		a.CompletedOnTime == b.CompletedOnTime &&
		a.CompletedLate == b.CompletedLate &&
		a.CompletedMorning == b.CompletedMorning &&
		a.CompletedAfternoon == b.CompletedAfternoon &&
		a.CompletedEvening == b.CompletedEvening &&
		a.CompletedUnscheduled == b.CompletedUnscheduled &&
		a.RecurringCompleted == b.RecurringCompleted &&
		a.NonRecurringCompleted == b.NonRecurringCompleted &&
		a.CurrentStreak == b.CurrentStreak &&
		a.LongestStreak == b.LongestStreak &&
		sameInstant(a.StreakStartedAt, b.StreakStartedAt) &&
		sameInstant(a.LastActivityDate, b.LastActivityDate)
}
