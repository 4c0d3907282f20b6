package testutil

import (
  "sync"
  "testing"

  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormLogger "gorm.io/gorm/logger"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
)

var (
  logOnce sync.Once
  logg    *logger.Logger
  logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
  tb.Helper()
  logOnce.Do(func() {
    logg, logErr = logger.New("test")
  })
  if logErr != nil {
    tb.Fatalf("failed to init logger: %v", logErr)
  }
  return logg
}

// DB opens a fresh in-memory sqlite database per call. The pool is pinned to
// a single connection so every query sees the same :memory: database.
func DB(tb testing.TB) *gorm.DB {
  tb.Helper()

  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
    Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
  })
  if err != nil {
    tb.Fatalf("failed to open test db: %v", err)
  }

  sqlDB, err := db.DB()
  if err != nil {
    tb.Fatalf("failed to get sql db: %v", err)
  }
  sqlDB.SetMaxIdleConns(1)
  sqlDB.SetMaxOpenConns(1)
  tb.Cleanup(func() {
    _ = sqlDB.Close()
  })

  if err := autoMigrateAll(db); err != nil {
    tb.Fatalf("failed to migrate test db: %v", err)
  }
  return db
}

func autoMigrateAll(db *gorm.DB) error {
  return db.AutoMigrate(
    &types.User{},
    &types.LoginToken{},
    &types.Project{},
    &types.Milestone{},
    &types.CheckIn{},
    &types.AIInteractionLog{},
  )
}
