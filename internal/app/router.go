package app

import (
  "github.com/gin-gonic/gin"

  "github.com/shipmydiss/backend/internal/middleware"
  "github.com/shipmydiss/backend/internal/observability"
  "github.com/shipmydiss/backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, am *middleware.AuthMiddleware) *gin.Engine {
  return server.NewRouter(server.RouterConfig{
    AllowedOrigins:  cfg.AllowedOrigins,
    TracingEnabled:  observability.Enabled(),
    BetaMode:        cfg.BetaMode,
    AuthHandler:     h.Auth,
    AdminHandler:    h.Admin,
    PlanHandler:     h.Plan,
    CheckinHandler:  h.Checkin,
    DocumentHandler: h.Document,
    ProjectHandler:  h.Project,
    JobsHandler:     h.Jobs,
    AuthMiddleware:  am,
  })
}
