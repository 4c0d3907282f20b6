package app

import (
  "github.com/shipmydiss/backend/internal/handlers"
)

type Handlers struct {
  Auth     *handlers.AuthHandler
  Admin    *handlers.AdminHandler
  Plan     *handlers.PlanHandler
  Checkin  *handlers.CheckinHandler
  Document *handlers.DocumentHandler
  Project  *handlers.ProjectHandler
  Jobs     *handlers.JobsHandler
}

func wireHandlers(cfg Config, s Services) Handlers {
  return Handlers{
    Auth:     handlers.NewAuthHandler(s.Auth, cfg.AppURL, cfg.SecureCookies),
    Admin:    handlers.NewAdminHandler(s.Auth, s.User, cfg.SecureCookies),
    Plan:     handlers.NewPlanHandler(s.Plan),
    Checkin:  handlers.NewCheckinHandler(s.Checkin),
    Document: handlers.NewDocumentHandler(s.Document),
    Project:  handlers.NewProjectHandler(s.Project, s.Milestone, s.User),
    Jobs:     handlers.NewJobsHandler(s.Reminder, cfg.CronSecret),
  }
}
