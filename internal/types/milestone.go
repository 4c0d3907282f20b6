package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  PhaseLitReview      = "lit_review"
  PhaseMethodology    = "methodology"
  PhaseDataCollection = "data_collection"
  PhaseAnalysis       = "analysis"
  PhaseDrafting       = "drafting"
  PhaseEditing        = "editing"
  PhaseSubmission     = "submission"
)

// PhaseOrder is the fixed progression of dissertation phases.
var PhaseOrder = []string{
  PhaseLitReview,
  PhaseMethodology,
  PhaseDataCollection,
  PhaseAnalysis,
  PhaseDrafting,
  PhaseEditing,
  PhaseSubmission,
}

func ValidPhase(p string) bool {
  for _, known := range PhaseOrder {
    if p == known {
      return true
    }
  }
  return false
}

const (
  MilestoneUpcoming   = "upcoming"
  MilestoneInProgress = "in_progress"
  MilestoneCompleted  = "completed"
  MilestoneOverdue    = "overdue"
  MilestoneAdjusted   = "adjusted"
)

type Milestone struct {
  ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  ProjectID      uuid.UUID `gorm:"type:uuid;index;not null;column:project_id" json:"project_id"`
  Title          string    `gorm:"not null;column:title" json:"title"`
  Description    string    `gorm:"column:description" json:"description"`
  Phase          string    `gorm:"not null;column:phase" json:"phase"`
  TargetDate     time.Time `gorm:"not null;column:target_date" json:"target_date"`
  EstimatedHours int       `gorm:"column:estimated_hours" json:"estimated_hours"`
  Deliverable    string    `gorm:"column:deliverable" json:"deliverable"`
  Order          int       `gorm:"not null;column:sort_order" json:"order"`
  Status         string    `gorm:"not null;default:upcoming;column:status" json:"status"`
  CreatedAt      time.Time `gorm:"not null" json:"created_at"`
  UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Milestone) TableName() string {
  return "milestone"
}
