package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  InteractionPlanGeneration   = "plan_generation"
  InteractionCheckin          = "checkin"
  InteractionPlanAdjustment   = "plan_adjustment"
  InteractionDocumentAnalysis = "document_analysis"
)

// AIInteractionLog is the append-only audit record of every AI call.
// Rows are never mutated; they are removed only by cascading deletes.
type AIInteractionLog struct {
  ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  ProjectID       uuid.UUID `gorm:"type:uuid;index;not null;column:project_id" json:"project_id"`
  InteractionType string    `gorm:"not null;column:interaction_type" json:"interaction_type"`
  UserInput       string    `gorm:"type:text;column:user_input" json:"user_input"`
  AIOutput        string    `gorm:"type:text;column:ai_output" json:"ai_output"`
  CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (AIInteractionLog) TableName() string {
  return "ai_interaction_log"
}
