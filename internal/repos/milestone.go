package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
)

type MilestoneRepo interface {
  Create(ctx context.Context, tx *gorm.DB, milestones []*types.Milestone) ([]*types.Milestone, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID) ([]*types.Milestone, error)
  ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Milestone, error)
  UpdateStatusByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID, status string) error
  UpdateSchedule(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID, targetDate time.Time, status string) (int64, error)
  UpdateStatus(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID, status string) (int64, error)
  DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error
}

type milestoneRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
  return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

func (mr *milestoneRepo) Create(ctx context.Context, tx *gorm.DB, milestones []*types.Milestone) ([]*types.Milestone, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  if len(milestones) == 0 {
    return []*types.Milestone{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&milestones).Error; err != nil {
    return nil, err
  }
  return milestones, nil
}

func (mr *milestoneRepo) GetByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID) ([]*types.Milestone, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Milestone
  if len(milestoneIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", milestoneIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (mr *milestoneRepo) ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Milestone, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Milestone
  if err := transaction.WithContext(ctx).
    Where("project_id = ?", projectID).
    Order("sort_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (mr *milestoneRepo) UpdateStatusByIDs(ctx context.Context, tx *gorm.DB, milestoneIDs []uuid.UUID, status string) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  if len(milestoneIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.Milestone{}).
    Where("id IN ?", milestoneIDs).
    Update("status", status).Error
}

func (mr *milestoneRepo) UpdateSchedule(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID, targetDate time.Time, status string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.Milestone{}).
    Where("id = ?", milestoneID).
    Updates(map[string]interface{}{
      "target_date": targetDate,
      "status":      status,
    })
  return res.RowsAffected, res.Error
}

func (mr *milestoneRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, milestoneID uuid.UUID, status string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.Milestone{}).
    Where("id = ?", milestoneID).
    Update("status", status)
  return res.RowsAffected, res.Error
}

func (mr *milestoneRepo) DeleteByProjectIDs(ctx context.Context, tx *gorm.DB, projectIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  if len(projectIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("project_id IN ?", projectIDs).
    Delete(&types.Milestone{}).Error
}
