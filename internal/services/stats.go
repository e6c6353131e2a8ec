package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/summitapp/summit-api/internal/cache"
	"github.com/summitapp/summit-api/internal/config"
	"github.com/summitapp/summit-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Aggregator turns task/goal mutations into updated stats rows, streaks and
// achievement progress. It runs synchronously inside the request that
// triggered it; aggregate rows are a derived cache, the task/goal rows stay
// the source of truth.
type Aggregator struct {
	db    *gorm.DB
	locks sync.Map // user id -> *sync.Mutex
}

// Global aggregator instance, set up in main.
var Stats *Aggregator

func InitStats(db *gorm.DB) {
	Stats = NewAggregator(db)
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

const maxUpdateAttempts = 3

// AchievementEvent is the outbound signal for a newly-completed milestone,
// consumed by the notification/UI layer for celebratory display.
type AchievementEvent struct {
	EventID     uuid.UUID `json:"eventId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// userLock serializes aggregate read-modify-writes per owner. Both stats
// scopes and the achievement rows of one user share the lock; cross-process
// deployments additionally rely on row locking inside the transaction.
func (a *Aggregator) userLock(userID uint) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// forUpdate adds SELECT ... FOR UPDATE on drivers that support it.
func (a *Aggregator) forUpdate(tx *gorm.DB) *gorm.DB {
	if a.db.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (a *Aggregator) withRetry(fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		if err = a.db.Transaction(fn); err == nil {
			return nil
		}
		config.Logger.Warnf("stats: update attempt %d/%d failed: %v", attempt, maxUpdateAttempts, err)
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

// OnTaskCreated validates the template's recurrence against the owning
// goal's deadline, persists the template and its generated occurrences, and
// returns the full series. The second result reports the degenerate bound
// ("no recurrence possible") for the caller to surface.
func (a *Aggregator) OnTaskCreated(template models.Task, goal models.Goal) ([]models.Task, bool, error) {
	if template.RepeatType == "" {
		template.RepeatType = models.RepeatNone
	}
	template.IsRepeating = template.RepeatType != models.RepeatNone

	if err := ValidateRecurrence(template, goal.Deadline); err != nil {
		return nil, false, err
	}

	var series []models.Task
	var truncated bool
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&template).Error; err != nil {
			return err
		}
		occurrences, trunc, err := ExpandOccurrences(template, goal.Deadline)
		if err != nil {
			return err
		}
		truncated = trunc
		if len(occurrences) > 1 {
			rest := occurrences[1:]
			if err := tx.Create(&rest).Error; err != nil {
				return err
			}
		}
		series = occurrences
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return series, truncated, nil
}

// OnTaskCompleted marks the task complete, then fans the event out to both
// stats scopes and the achievement rows. The completion write is durable on
// its own: a failed aggregate update is retried and, if it still fails,
// reported as ErrConflict without rolling the completion back; the full
// recompute path reconciles later.
func (a *Aggregator) OnTaskCompleted(taskID uint, userID uint, completedAt time.Time) (*models.Task, []AchievementEvent, error) {
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		return nil, nil, err
	}
	loc := user.Location()

	// The idempotency gate lives under the lock: two racing completions of
	// the same task must not both pass the IsCompleted check.
	mu := a.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	var task models.Task
	if err := a.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return nil, nil, err
	}
	if task.IsCompleted {
		return &task, nil, nil
	}

	task.IsCompleted = true
	task.CompletedAt = &completedAt
	task.CompletedOnTime = !completedAt.After(task.ScheduledAt)
	if err := a.db.Save(&task).Error; err != nil {
		return nil, nil, err
	}

	var events []AchievementEvent
	err := a.withRetry(func(tx *gorm.DB) error {
		events = events[:0]

		userStats, err := a.loadUserStats(tx, userID)
		if err != nil {
			return err
		}
		goalStats, err := a.loadGoalStats(tx, task.GoalID, userID)
		if err != nil {
			return err
		}

		applyTaskToUserStats(userStats, task, completedAt, loc)
		applyTaskToGoalStats(goalStats, task, completedAt, loc)

		if err := tx.Save(userStats).Error; err != nil {
			return err
		}
		if err := tx.Save(goalStats).Error; err != nil {
			return err
		}

		events, err = a.advanceAchievements(tx, userID, completedAt, func(row *models.Achievement) bool {
			switch row.Type {
			case models.MilestoneTaskCompletion:
				return ApplyProgress(row, 1, completedAt)
			case models.MilestoneConsistency:
				if task.CompletedOnTime {
					return ApplyProgress(row, 1, completedAt)
				}
			case models.MilestoneStreak:
				return RaiseProgressTo(row, userStats.LongestStreak, completedAt)
			}
			return false
		})
		return err
	})
	if err != nil {
		return &task, nil, err
	}

	cache.Invalidate(cache.UserStatsKey(userID), cache.GoalStatsKey(task.GoalID))
	return &task, events, nil
}

// OnGoalCompleted marks the goal complete and advances goal-level counters
// and goal_completion achievements. Idempotent per goal.
func (a *Aggregator) OnGoalCompleted(goalID uint, userID uint, completedAt time.Time) (*models.Goal, []AchievementEvent, error) {
	mu := a.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	var goal models.Goal
	if err := a.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return nil, nil, err
	}
	if goal.IsCompleted {
		return &goal, nil, nil
	}

	goal.IsCompleted = true
	goal.CompletedAt = &completedAt
	if err := a.db.Save(&goal).Error; err != nil {
		return nil, nil, err
	}

	var events []AchievementEvent
	err := a.withRetry(func(tx *gorm.DB) error {
		events = events[:0]

		userStats, err := a.loadUserStats(tx, userID)
		if err != nil {
			return err
		}
		userStats.GoalsCompleted++
		if err := tx.Save(userStats).Error; err != nil {
			return err
		}

		events, err = a.advanceAchievements(tx, userID, completedAt, func(row *models.Achievement) bool {
			if row.Type == models.MilestoneGoalCompletion {
				return ApplyProgress(row, 1, completedAt)
			}
			return false
		})
		return err
	})
	if err != nil {
		return &goal, nil, err
	}

	cache.Invalidate(cache.UserStatsKey(userID))
	return &goal, events, nil
}

// OnGoalArchived hides the goal from the tree. Stats and history stay.
func (a *Aggregator) OnGoalArchived(goalID uint, userID uint) (*models.Goal, error) {
	var goal models.Goal
	if err := a.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return nil, err
	}
	if goal.IsArchived {
		return &goal, nil
	}
	goal.IsArchived = true
	if err := a.db.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func (a *Aggregator) loadUserStats(tx *gorm.DB, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	err := a.forUpdate(tx).Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{UserID: userID}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	return &stats, err
}

func (a *Aggregator) loadGoalStats(tx *gorm.DB, goalID uint, userID uint) (*models.GoalStats, error) {
	var stats models.GoalStats
	err := a.forUpdate(tx).Where("goal_id = ?", goalID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.GoalStats{GoalID: goalID, UserID: userID}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	return &stats, err
}

// advanceAchievements runs the step function over every achievement row of
// the user and records a notification for each milestone completed now.
func (a *Aggregator) advanceAchievements(tx *gorm.DB, userID uint, now time.Time, step func(*models.Achievement) bool) ([]AchievementEvent, error) {
	var rows []models.Achievement
	if err := a.forUpdate(tx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	var events []AchievementEvent
	for i := range rows {
		row := &rows[i]
		before := row.CurrentValue
		completedNow := step(row)
		if row.CurrentValue == before && !completedNow {
			continue
		}
		if err := tx.Save(row).Error; err != nil {
			return nil, err
		}
		if completedNow {
			notification := models.Notification{
				UserID: userID,
				Type:   "achievement_completed",
				Title:  row.Title,
				Body:   row.Description,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return nil, err
			}
			events = append(events, AchievementEvent{
				EventID:     notification.EventID,
				Title:       row.Title,
				Description: row.Description,
			})
			config.Logger.Infow("achievement completed",
				"userId", userID, "achievement", row.Title, "eventId", notification.EventID)
		}
	}
	return events, nil
}

// --- shared fold steps -----------------------------------------------------
//
// The incremental path above and Recompute below both go through these, which
// is what makes replaying history equivalent to the live updates.

func applyTaskToUserStats(s *models.UserStats, task models.Task, completedAt time.Time, loc *time.Location) {
	s.TasksCompleted++
	if task.CompletedOnTime {
		s.CompletedOnTime++
	} else {
		s.CompletedLate++
	}
	switch task.TimeOfDay {
	case models.TimeOfDayMorning:
		s.CompletedMorning++
	case models.TimeOfDayAfternoon:
		s.CompletedAfternoon++
	case models.TimeOfDayEvening:
		s.CompletedEvening++
	default:
		s.CompletedUnscheduled++
	}
	if task.IsRepeating {
		s.RecurringCompleted++
	} else {
		s.NonRecurringCompleted++
	}

	streak := AdvanceStreak(StreakState{
		Current:      s.CurrentStreak,
		Longest:      s.LongestStreak,
		StartedAt:    s.StreakStartedAt,
		LastActivity: s.LastActivityDate,
	}, completedAt, loc)
	s.CurrentStreak = streak.Current
	s.LongestStreak = streak.Longest
	s.StreakStartedAt = streak.StartedAt
	s.LastActivityDate = streak.LastActivity
}

func applyTaskToGoalStats(s *models.GoalStats, task models.Task, completedAt time.Time, loc *time.Location) {
	s.TasksCompleted++
	if task.CompletedOnTime {
		s.CompletedOnTime++
	} else {
		s.CompletedLate++
	}
	switch task.TimeOfDay {
	case models.TimeOfDayMorning:
		s.CompletedMorning++
	case models.TimeOfDayAfternoon:
		s.CompletedAfternoon++
	case models.TimeOfDayEvening:
		s.CompletedEvening++
	default:
		s.CompletedUnscheduled++
	}
	if task.IsRepeating {
		s.RecurringCompleted++
	} else {
		s.NonRecurringCompleted++
	}

	streak := AdvanceStreak(StreakState{
		Current:      s.CurrentStreak,
		Longest:      s.LongestStreak,
		StartedAt:    s.StreakStartedAt,
		LastActivity: s.LastActivityDate,
	}, completedAt, loc)
	s.CurrentStreak = streak.Current
	s.LongestStreak = streak.Longest
	s.StreakStartedAt = streak.StartedAt
	s.LastActivityDate = streak.LastActivity
}
