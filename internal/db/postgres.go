package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
  "github.com/shipmydiss/backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "shipmydiss", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  serviceLog.Info("Connecting to Postgres...")
  theDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    serviceLog.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("failed to connect to postgres: %w", err)
  }

  return &PostgresService{db: theDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.LoginToken{},
    &types.Project{},
    &types.Milestone{},
    &types.CheckIn{},
    &types.AIInteractionLog{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }

  // Cascade rules are safety-critical: deleting a user must remove every
  // owned project and all of its children. Declared explicitly so they are
  // visible here rather than implied by model tags.
  s.log.Info("Configuring cascade foreign keys...")
  constraints := []struct {
    name string
    sql  string
  }{
    {"fk_login_token_user_id", `
      ALTER TABLE "login_token"
      ADD CONSTRAINT "fk_login_token_user_id"
      FOREIGN KEY ("user_id") REFERENCES "user"("id")
      ON DELETE CASCADE`},
    {"fk_project_user_id", `
      ALTER TABLE "project"
      ADD CONSTRAINT "fk_project_user_id"
      FOREIGN KEY ("user_id") REFERENCES "user"("id")
      ON DELETE CASCADE`},
    {"fk_milestone_project_id", `
      ALTER TABLE "milestone"
      ADD CONSTRAINT "fk_milestone_project_id"
      FOREIGN KEY ("project_id") REFERENCES "project"("id")
      ON DELETE CASCADE`},
    {"fk_check_in_project_id", `
      ALTER TABLE "check_in"
      ADD CONSTRAINT "fk_check_in_project_id"
      FOREIGN KEY ("project_id") REFERENCES "project"("id")
      ON DELETE CASCADE`},
    {"fk_ai_interaction_log_project_id", `
      ALTER TABLE "ai_interaction_log"
      ADD CONSTRAINT "fk_ai_interaction_log_project_id"
      FOREIGN KEY ("project_id") REFERENCES "project"("id")
      ON DELETE CASCADE`},
  }
  for _, c := range constraints {
    var exists bool
    if err := s.db.Raw(
      `SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
    ).Scan(&exists).Error; err != nil {
      return fmt.Errorf("failed to check constraint %s: %w", c.name, err)
    }
    if exists {
      continue
    }
    if err := s.db.Exec(c.sql).Error; err != nil {
      return fmt.Errorf("failed to add %s: %w", c.name, err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
