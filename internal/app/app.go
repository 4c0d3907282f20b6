package app

import (
  "context"
  "fmt"
  "os"

  "github.com/gin-gonic/gin"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/db"
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/observability"
)

type App struct {
  Log      *logger.Logger
  DB       *gorm.DB
  Router   *gin.Engine
  Cfg      Config
  Repos    Repos
  Services Services

  otelShutdown func(context.Context) error
}

func New() (*App, error) {
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    return nil, fmt.Errorf("init logger: %w", err)
  }

  log.Info("Loading environment variables...")
  cfg := LoadConfig(log)
  if cfg.BetaMode {
    log.Info("Running in beta mode")
  }

  otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "shipmydiss-backend",
    Environment: cfg.Environment,
  })

  pg, err := db.NewPostgresService(log)
  if err != nil {
    log.Sync()
    return nil, fmt.Errorf("init postgres: %w", err)
  }
  if err := pg.AutoMigrateAll(); err != nil {
    log.Sync()
    return nil, fmt.Errorf("postgres automigrate: %w", err)
  }
  theDB := pg.DB()

  reposet := wireRepos(theDB, log)

  serviceset, err := wireServices(theDB, log, cfg, reposet)
  if err != nil {
    log.Sync()
    return nil, err
  }

  handlerset := wireHandlers(cfg, serviceset)
  authMiddleware := wireMiddleware(log, serviceset)
  router := wireRouter(cfg, handlerset, authMiddleware)

  return &App{
    Log:          log,
    DB:           theDB,
    Router:       router,
    Cfg:          cfg,
    Repos:        reposet,
    Services:     serviceset,
    otelShutdown: otelShutdown,
  }, nil
}

func (a *App) Run(addr string) error {
  if a == nil || a.Router == nil {
    return fmt.Errorf("app not initialized")
  }
  return a.Router.Run(addr)
}

func (a *App) Close() {
  if a == nil {
    return
  }
  if a.otelShutdown != nil {
    _ = a.otelShutdown(context.Background())
  }
  if a.Log != nil {
    a.Log.Sync()
  }
}
