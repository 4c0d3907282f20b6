package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
)

// AIInteractionLogRepo is append-only: no update methods exist on purpose.
// Rows disappear only through cascading project/user deletion.
type AIInteractionLogRepo interface {
  Create(ctx context.Context, tx *gorm.DB, logs []*types.AIInteractionLog) ([]*types.AIInteractionLog, error)
  ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.AIInteractionLog, error)
  DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error
}

type aiInteractionLogRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAIInteractionLogRepo(db *gorm.DB, baseLog *logger.Logger) AIInteractionLogRepo {
  return &aiInteractionLogRepo{db: db, log: baseLog.With("repo", "AIInteractionLogRepo")}
}

func (ar *aiInteractionLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.AIInteractionLog) ([]*types.AIInteractionLog, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  if len(logs) == 0 {
    return []*types.AIInteractionLog{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
    return nil, err
  }
  return logs, nil
}

func (ar *aiInteractionLogRepo) ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.AIInteractionLog, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  var results []*types.AIInteractionLog
  if err := transaction.WithContext(ctx).
    Where("project_id = ?", projectID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ar *aiInteractionLogRepo) DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }
  if len(projectIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("project_id IN ?", projectIDs).
    Delete(&types.AIInteractionLog{}).Error
}
