package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
)

type CheckInRepo interface {
  Create(ctx context.Context, tx *gorm.DB, checkIns []*types.CheckIn) ([]*types.CheckIn, error)
  // ListRecentByProjectID returns check-ins newest-week-first.
  ListRecentByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, limit int) ([]*types.CheckIn, error)
  ExistsSince(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, since time.Time) (bool, error)
  DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error
}

type checkInRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCheckInRepo(db *gorm.DB, baseLog *logger.Logger) CheckInRepo {
  return &checkInRepo{db: db, log: baseLog.With("repo", "CheckInRepo")}
}

func (cr *checkInRepo) Create(ctx context.Context, tx *gorm.DB, checkIns []*types.CheckIn) ([]*types.CheckIn, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(checkIns) == 0 {
    return []*types.CheckIn{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&checkIns).Error; err != nil {
    return nil, err
  }
  return checkIns, nil
}

func (cr *checkInRepo) ListRecentByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, limit int) ([]*types.CheckIn, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var results []*types.CheckIn
  q := transaction.WithContext(ctx).
    Where("project_id = ?", projectID).
    Order("week_number DESC")
  if limit > 0 {
    q = q.Limit(limit)
  }
  if err := q.Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *checkInRepo) ExistsSince(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, since time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  var n int64
  if err := transaction.WithContext(ctx).
    Model(&types.CheckIn{}).
    Where("project_id = ? AND created_at > ?", projectID, since).
    Count(&n).Error; err != nil {
    return false, err
  }
  return n > 0, nil
}

func (cr *checkInRepo) DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }
  if len(projectIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("project_id IN ?", projectIDs).
    Delete(&types.CheckIn{}).Error
}
