package app

import (
  "fmt"

  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/platform/sendgrid"
  "github.com/shipmydiss/backend/internal/services"
)

type Services struct {
  Auth         services.AuthService
  Plan         services.PlanService
  Checkin      services.CheckinService
  Document     services.DocumentService
  Transparency services.TransparencyService
  User         services.UserService
  Project      services.ProjectService
  Milestone    services.MilestoneService
  Reminder     services.ReminderService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
  log.Info("Wiring services...")

  ai, err := services.NewOpenAIClient(log)
  if err != nil {
    return Services{}, fmt.Errorf("init openai client: %w", err)
  }
  email, err := sendgrid.NewFromEnv(log)
  if err != nil {
    return Services{}, fmt.Errorf("init sendgrid client: %w", err)
  }

  transparency := services.NewTransparencyService(log)

  return Services{
    Auth: services.NewAuthService(
      db, log, r.User, r.LoginToken, email,
      cfg.JWTSecretKey, cfg.SessionTTL,
      cfg.AdminSecretKey, cfg.AdminPassword, cfg.AdminPasswordBcrypt,
      cfg.AppURL,
    ),
    Plan:         services.NewPlanService(db, log, ai, r.Project, r.Milestone, r.CheckIn, r.AIInteractionLog),
    Checkin:      services.NewCheckinService(db, log, ai, r.Project, r.Milestone, r.CheckIn, r.AIInteractionLog),
    Document:     services.NewDocumentService(db, log, ai, r.Project, r.AIInteractionLog),
    Transparency: transparency,
    User:         services.NewUserService(db, log, r.User, r.Project, r.Milestone, r.CheckIn, r.AIInteractionLog, r.LoginToken, email, cfg.AppURL),
    Project:      services.NewProjectService(db, log, r.Project, r.Milestone, r.CheckIn, r.AIInteractionLog, transparency),
    Milestone:    services.NewMilestoneService(db, log, r.Project, r.Milestone),
    Reminder:     services.NewReminderService(db, log, r.User, r.Project, r.Milestone, r.CheckIn, email, cfg.AppURL),
  }, nil
}
