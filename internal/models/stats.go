package models

import "time"

// UserStats and GoalStats are materialized views over task/goal history.
// They are recomputable from scratch and never a source of truth on their own.

type UserStats struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	UserID                uint       `json:"userId" gorm:"uniqueIndex;not null"`
	TasksCompleted        int        `json:"tasksCompleted" gorm:"default:0"`
	CompletedOnTime       int        `json:"completedOnTime" gorm:"default:0"`
	CompletedLate         int        `json:"completedLate" gorm:"default:0"`
	CompletedMorning      int        `json:"completedMorning" gorm:"default:0"`
	CompletedAfternoon    int        `json:"completedAfternoon" gorm:"default:0"`
	CompletedEvening      int        `json:"completedEvening" gorm:"default:0"`
	CompletedUnscheduled  int        `json:"completedUnscheduled" gorm:"default:0"`
	RecurringCompleted    int        `json:"recurringCompleted" gorm:"default:0"`
	NonRecurringCompleted int        `json:"nonRecurringCompleted" gorm:"default:0"`
	GoalsCompleted        int        `json:"goalsCompleted" gorm:"default:0"`
	CurrentStreak         int        `json:"currentStreak" gorm:"default:0"`
	LongestStreak         int        `json:"longestStreak" gorm:"default:0"`
	StreakStartedAt       *time.Time `json:"streakStartedAt"`
	LastActivityDate      *time.Time `json:"lastActivityDate"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

type GoalStats struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	GoalID                uint       `json:"goalId" gorm:"uniqueIndex;not null"`
	UserID                uint       `json:"userId" gorm:"index;not null"`
	TasksCompleted        int        `json:"tasksCompleted" gorm:"default:0"`
	CompletedOnTime       int        `json:"completedOnTime" gorm:"default:0"`
	CompletedLate         int        `json:"completedLate" gorm:"default:0"`
	CompletedMorning      int        `json:"completedMorning" gorm:"default:0"`
	CompletedAfternoon    int        `json:"completedAfternoon" gorm:"default:0"`
	CompletedEvening      int        `json:"completedEvening" gorm:"default:0"`
	CompletedUnscheduled  int        `json:"completedUnscheduled" gorm:"default:0"`
	RecurringCompleted    int        `json:"recurringCompleted" gorm:"default:0"`
	NonRecurringCompleted int        `json:"nonRecurringCompleted" gorm:"default:0"`
	CurrentStreak         int        `json:"currentStreak" gorm:"default:0"`
	LongestStreak         int        `json:"longestStreak" gorm:"default:0"`
	StreakStartedAt       *time.Time `json:"streakStartedAt"`
	LastActivityDate      *time.Time `json:"lastActivityDate"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}
