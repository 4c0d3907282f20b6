package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  CheckInPending   = "pending"
  CheckInCompleted = "completed"
  CheckInSkipped   = "skipped"
)

type CheckIn struct {
  ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  ProjectID       uuid.UUID      `gorm:"type:uuid;index;not null;column:project_id" json:"project_id"`
  WeekNumber      int            `gorm:"not null;column:week_number" json:"week_number"`
  Status          string         `gorm:"not null;default:completed;column:status" json:"status"`
  CompletedTasks  datatypes.JSON `gorm:"type:jsonb;column:completed_tasks" json:"completed_tasks"`
  Blockers        string         `gorm:"column:blockers" json:"blockers"`
  MoodRating      int            `gorm:"not null;column:mood_rating" json:"mood_rating"`
  AIResponse      string         `gorm:"column:ai_response" json:"ai_response"`
  PlanAdjustments datatypes.JSON `gorm:"type:jsonb;column:plan_adjustments" json:"plan_adjustments,omitempty"`
  CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (CheckIn) TableName() string {
  return "check_in"
}
