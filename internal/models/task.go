package models

import (
	"time"

	"gorm.io/gorm"
)

// Repeat types supported by the recurrence expander.
const (
	RepeatNone          = "none"
	RepeatDaily         = "daily"
	RepeatEveryOtherDay = "every_other_day"
	RepeatWeekly        = "weekly"
	RepeatMonthly       = "monthly"
)

// Time-of-day buckets.
const (
	TimeOfDayMorning   = "morning"
	TimeOfDayAfternoon = "afternoon"
	TimeOfDayEvening   = "evening"
	TimeOfDayNotSet    = "not_set"
)

type Task struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	GoalID          uint           `json:"goalId" gorm:"index;not null"`
	UserID          uint           `json:"userId" gorm:"index;not null"`
	Title           string         `json:"title" gorm:"not null"`
	Description     string         `json:"description"`
	ScheduledAt     time.Time      `json:"scheduledAt" gorm:"not null"`
	TimeOfDay       string         `json:"timeOfDay" gorm:"not null;default:'not_set'"` // morning, afternoon, evening, not_set
	IsCompleted     bool           `json:"isCompleted" gorm:"default:false"`
	CompletedAt     *time.Time     `json:"completedAt"`
	CompletedOnTime bool           `json:"completedOnTime" gorm:"default:false"` // completedAt <= scheduledAt
	IsRepeating     bool           `json:"isRepeating" gorm:"default:false"`
	RepeatType      string         `json:"repeatType" gorm:"not null;default:'none'"` // none, daily, every_other_day, weekly, monthly
	RepeatUntil     *time.Time     `json:"repeatUntil"`
	ParentTaskID    *uint          `json:"parentTaskId" gorm:"index"` // recurring-series origin
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func ValidRepeatType(t string) bool {
	switch t {
	case RepeatNone, RepeatDaily, RepeatEveryOtherDay, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

func ValidTimeOfDay(t string) bool {
	switch t {
	case TimeOfDayMorning, TimeOfDayAfternoon, TimeOfDayEvening, TimeOfDayNotSet:
		return true
	}
	return false
}

// Task DTOs
type CreateTaskRequest struct {
	GoalID      uint       `json:"goalId" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	ScheduledAt time.Time  `json:"scheduledAt" validate:"required"`
	TimeOfDay   string     `json:"timeOfDay"`
	RepeatType  string     `json:"repeatType"`
	RepeatUntil *time.Time `json:"repeatUntil"`
}

type CompleteTaskRequest struct {
	CompletedAt *time.Time `json:"completedAt"`
}
