package app

import (
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/repos"
)

type Repos struct {
  User             repos.UserRepo
  LoginToken       repos.LoginTokenRepo
  Project          repos.ProjectRepo
  Milestone        repos.MilestoneRepo
  CheckIn          repos.CheckInRepo
  AIInteractionLog repos.AIInteractionLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
  log.Info("Wiring repos...")
  return Repos{
    User:             repos.NewUserRepo(db, log),
    LoginToken:       repos.NewLoginTokenRepo(db, log),
    Project:          repos.NewProjectRepo(db, log),
    Milestone:        repos.NewMilestoneRepo(db, log),
    CheckIn:          repos.NewCheckInRepo(db, log),
    AIInteractionLog: repos.NewAIInteractionLogRepo(db, log),
  }
}
