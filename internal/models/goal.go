package models

import (
	"time"

	"gorm.io/gorm"
)

// Goal types bucket a goal by horizon.
const (
	GoalTypeShort  = "short"
	GoalTypeMedium = "medium"
	GoalTypeLong   = "long"
)

type Goal struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"userId" gorm:"index;not null"`
	ParentGoalID *uint          `json:"parentGoalId" gorm:"index"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	GoalType     string         `json:"goalType" gorm:"not null;default:'short'"` // short, medium, long
	Deadline     time.Time      `json:"deadline" gorm:"not null"`
	IsCompleted  bool           `json:"isCompleted" gorm:"default:false"`
	CompletedAt  *time.Time     `json:"completedAt"`
	IsArchived   bool           `json:"isArchived" gorm:"default:false"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
	Tasks        []Task         `json:"tasks,omitempty" gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE"`
	Stats        *GoalStats     `json:"-" gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE"`
}

func ValidGoalType(t string) bool {
	return t == GoalTypeShort || t == GoalTypeMedium || t == GoalTypeLong
}

// Goal DTOs
type CreateGoalRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	GoalType     string    `json:"goalType" validate:"required"`
	Deadline     time.Time `json:"deadline" validate:"required"`
	ParentGoalID *uint     `json:"parentGoalId"`
}

type UpdateGoalRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	GoalType     *string    `json:"goalType"`
	Deadline     *time.Time `json:"deadline"`
	ParentGoalID *uint      `json:"parentGoalId"`
}
