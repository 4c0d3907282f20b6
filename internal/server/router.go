package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/shipmydiss/backend/internal/handlers"
  "github.com/shipmydiss/backend/internal/middleware"
)

type RouterConfig struct {
  AllowedOrigins  []string
  TracingEnabled  bool
  BetaMode        bool
  AuthHandler     *handlers.AuthHandler
  AdminHandler    *handlers.AdminHandler
  PlanHandler     *handlers.PlanHandler
  CheckinHandler  *handlers.CheckinHandler
  DocumentHandler *handlers.DocumentHandler
  ProjectHandler  *handlers.ProjectHandler
  JobsHandler     *handlers.JobsHandler
  AuthMiddleware  *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  if cfg.TracingEnabled {
    router.Use(otelgin.Middleware("shipmydiss-backend"))
  }

  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AllowedOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  // ===============
  // || Public    ||
  // ===============
  router.GET("/healthcheck", handlers.HealthCheck(cfg.BetaMode))

  api := router.Group("/api")
  {
    api.POST("/auth/request-link", cfg.AuthHandler.RequestLink)
    api.GET("/auth/verify", cfg.AuthHandler.Verify)
    api.POST("/auth/logout", cfg.AuthHandler.Logout)
    api.POST("/admin/login", cfg.AdminHandler.Login)
    api.POST("/admin/logout", cfg.AdminHandler.Logout)
    api.POST("/jobs/reminder-sweep", cfg.JobsHandler.ReminderSweep)
  }

  // ===============
  // || Session   ||
  // ===============
  session := router.Group("/api")
  session.Use(cfg.AuthMiddleware.RequireAuth())
  session.GET("/me", cfg.ProjectHandler.GetMe)
  session.GET("/projects", cfg.ProjectHandler.ListProjects)
  session.GET("/projects/current", cfg.ProjectHandler.GetCurrent)
  session.POST("/plan/generate", cfg.PlanHandler.Generate)
  session.POST("/plan/adjust", cfg.PlanHandler.Adjust)
  session.POST("/checkin/submit", cfg.CheckinHandler.Submit)
  session.POST("/document/analyse", cfg.DocumentHandler.Analyse)
  session.PATCH("/milestones/:id", cfg.ProjectHandler.UpdateMilestone)
  session.GET("/export/transparency", cfg.ProjectHandler.ExportTransparency)

  // ===============
  // || Admin     ||
  // ===============
  admin := router.Group("/api/admin")
  admin.Use(cfg.AuthMiddleware.RequireAdmin())
  admin.GET("/users", cfg.AdminHandler.ListUsers)
  admin.POST("/users", cfg.AdminHandler.CreateUser)
  admin.PATCH("/users/:id", cfg.AdminHandler.UpdateUser)
  admin.DELETE("/users/:id", cfg.AdminHandler.DeleteUser)

  return router
}
