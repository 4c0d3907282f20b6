package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  ProjectTypeDissertation  = "dissertation"
  ProjectTypeAssignment    = "assignment"
  ProjectTypeProject       = "project"
  ProjectTypeExtendedEssay = "extended_essay"
)

const (
  MethodologyQualitative     = "qualitative"
  MethodologyQuantitative    = "quantitative"
  MethodologyMixed           = "mixed"
  MethodologyLiteratureBased = "literature_based"
  MethodologyNotSure         = "not_sure"
)

const (
  ProgressNotStarted     = "not_started"
  ProgressChosenTopic    = "chosen_topic"
  ProgressStartedReading = "started_reading"
  ProgressHaveProposal   = "have_proposal"
  ProgressCollectingData = "collecting_data"
)

type Project struct {
  ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  UserID               uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
  Title                string         `gorm:"not null;column:title" json:"title"`
  Type                 string         `gorm:"not null;column:type" json:"type"`
  WordCount            int            `gorm:"column:word_count" json:"word_count"`
  Deadline             time.Time      `gorm:"not null;column:deadline" json:"deadline"`
  WeeklyHoursAvailable int            `gorm:"column:weekly_hours_available" json:"weekly_hours_available"`
  Methodology          string         `gorm:"column:methodology" json:"methodology"`
  CurrentProgress      string         `gorm:"column:current_progress" json:"current_progress"`
  CurrentPhase         string         `gorm:"column:current_phase" json:"current_phase"`
  BlockedWeeks         datatypes.JSON `gorm:"type:jsonb;column:blocked_weeks" json:"blocked_weeks,omitempty"`
  OtherDeadlines       datatypes.JSON `gorm:"type:jsonb;column:other_deadlines" json:"other_deadlines,omitempty"`
  DocumentAnalysis     datatypes.JSON `gorm:"type:jsonb;column:document_analysis" json:"document_analysis,omitempty"`
  DocumentFileName     string         `gorm:"column:document_file_name" json:"document_file_name,omitempty"`
  DocumentAnalysedAt   *time.Time     `gorm:"column:document_analysed_at" json:"document_analysed_at,omitempty"`
  CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
  UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string {
  return "project"
}
