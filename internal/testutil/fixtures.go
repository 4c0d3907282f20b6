package testutil

import (
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/types"
)

func SeedUser(tb testing.TB, db *gorm.DB, email string) *types.User {
  tb.Helper()
  user := &types.User{
    ID:                 uuid.New(),
    Email:              email,
    Name:               "Test Student",
    SubscriptionStatus: types.SubscriptionFree,
  }
  if err := db.Create(user).Error; err != nil {
    tb.Fatalf("seed user: %v", err)
  }
  return user
}

func SeedProject(tb testing.TB, db *gorm.DB, userID uuid.UUID, deadline time.Time) *types.Project {
  tb.Helper()
  project := &types.Project{
    ID:                   uuid.New(),
    UserID:               userID,
    Title:                "The impact of remote work on team cohesion",
    Type:                 types.ProjectTypeDissertation,
    WordCount:            10000,
    Deadline:             deadline,
    WeeklyHoursAvailable: 10,
    Methodology:          types.MethodologyQualitative,
    CurrentProgress:      types.ProgressChosenTopic,
    CurrentPhase:         types.PhaseLitReview,
  }
  if err := db.Create(project).Error; err != nil {
    tb.Fatalf("seed project: %v", err)
  }
  return project
}

func SeedMilestone(tb testing.TB, db *gorm.DB, projectID uuid.UUID, order int, status string, targetDate time.Time) *types.Milestone {
  tb.Helper()
  milestone := &types.Milestone{
    ID:             uuid.New(),
    ProjectID:      projectID,
    Title:          "Milestone " + uuid.NewString()[:8],
    Phase:          types.PhaseLitReview,
    TargetDate:     targetDate,
    EstimatedHours: 10,
    Order:          order,
    Status:         status,
  }
  if err := db.Create(milestone).Error; err != nil {
    tb.Fatalf("seed milestone: %v", err)
  }
  return milestone
}

func SeedCheckIn(tb testing.TB, db *gorm.DB, projectID uuid.UUID, week int, aiResponse string) *types.CheckIn {
  tb.Helper()
  checkIn := &types.CheckIn{
    ID:         uuid.New(),
    ProjectID:  projectID,
    WeekNumber: week,
    Status:     types.CheckInCompleted,
    MoodRating: 3,
    AIResponse: aiResponse,
  }
  if err := db.Create(checkIn).Error; err != nil {
    tb.Fatalf("seed check-in: %v", err)
  }
  return checkIn
}

func SeedInteractionLog(tb testing.TB, db *gorm.DB, projectID uuid.UUID, interactionType, input, output string) *types.AIInteractionLog {
  tb.Helper()
  row := &types.AIInteractionLog{
    ID:              uuid.New(),
    ProjectID:       projectID,
    InteractionType: interactionType,
    UserInput:       input,
    AIOutput:        output,
  }
  if err := db.Create(row).Error; err != nil {
    tb.Fatalf("seed interaction log: %v", err)
  }
  return row
}

func SeedLoginToken(tb testing.TB, db *gorm.DB, userID uuid.UUID, token string, expiresAt time.Time) *types.LoginToken {
  tb.Helper()
  row := &types.LoginToken{
    ID:        uuid.New(),
    UserID:    userID,
    Token:     token,
    ExpiresAt: expiresAt,
  }
  if err := db.Create(row).Error; err != nil {
    tb.Fatalf("seed login token: %v", err)
  }
  return row
}
