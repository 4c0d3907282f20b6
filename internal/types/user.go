package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  SubscriptionFree      = "free"
  SubscriptionActive    = "active"
  SubscriptionCancelled = "cancelled"
  SubscriptionPastDue   = "past_due"
)

func ValidSubscriptionStatus(s string) bool {
  switch s {
  case SubscriptionFree, SubscriptionActive, SubscriptionCancelled, SubscriptionPastDue:
    return true
  }
  return false
}

type User struct {
  ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  Email              string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Name               string    `gorm:"column:name" json:"name"`
  SubscriptionStatus string    `gorm:"not null;default:free;column:subscription_status" json:"subscription_status"`
  CreatedAt          time.Time `gorm:"not null" json:"created_at"`
  UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
