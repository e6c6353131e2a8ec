package models

import "time"

// Milestone types an achievement can track.
const (
	MilestoneStreak         = "streak"
	MilestoneGoalCompletion = "goal_completion"
	MilestoneTaskCompletion = "task_completion"
	MilestoneConsistency    = "consistency"
	MilestoneCustom         = "custom"
)

type Achievement struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"userId" gorm:"index:idx_achievement_key;not null"`
	Type         string     `json:"type" gorm:"index:idx_achievement_key;not null"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description"`
	Threshold    int        `json:"threshold" gorm:"index:idx_achievement_key;not null"`
	CurrentValue int        `json:"currentValue" gorm:"default:0"`
	IsCompleted  bool       `json:"isCompleted" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func ValidMilestoneType(t string) bool {
	switch t {
	case MilestoneStreak, MilestoneGoalCompletion, MilestoneTaskCompletion,
		MilestoneConsistency, MilestoneCustom:
		return true
	}
	return false
}
