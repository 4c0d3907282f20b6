package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
)

type ProjectRepo interface {
  Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error)
  // GetOwned returns the project only when it belongs to userID; a project
  // owned by someone else is indistinguishable from a missing one.
  GetOwned(ctx context.Context, tx *gorm.DB, projectID, userID uuid.UUID) (*types.Project, error)
  ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error)
  LatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Project, error)
  ListWithDeadlineAfter(ctx context.Context, tx *gorm.DB, t time.Time) ([]*types.Project, error)
  CountByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) (map[uuid.UUID]int64, error)
  UpdateDocumentAnalysis(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, analysis datatypes.JSON, fileName string, analysedAt time.Time) error
  ListIDsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
  DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type projectRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
  return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (pr *projectRepo) Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if len(projects) == 0 {
    return []*types.Project{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&projects).Error; err != nil {
    return nil, err
  }
  return projects, nil
}

func (pr *projectRepo) GetOwned(ctx context.Context, tx *gorm.DB, projectID, userID uuid.UUID) (*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Project
  if err := transaction.WithContext(ctx).
    Where("id = ? AND user_id = ?", projectID, userID).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (pr *projectRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Project
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *projectRepo) LatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Project
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (pr *projectRepo) ListWithDeadlineAfter(ctx context.Context, tx *gorm.DB, t time.Time) ([]*types.Project, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Project
  if err := transaction.WithContext(ctx).
    Where("deadline > ?", t).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *projectRepo) CountByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  counts := make(map[uuid.UUID]int64, len(userIDs))
  if len(userIDs) == 0 {
    return counts, nil
  }
  type row struct {
    UserID uuid.UUID
    N      int64
  }
  var rows []row
  if err := transaction.WithContext(ctx).
    Model(&types.Project{}).
    Select("user_id, COUNT(*) AS n").
    Where("user_id IN ?", userIDs).
    Group("user_id").
    Scan(&rows).Error; err != nil {
    return nil, err
  }
  for _, r := range rows {
    counts[r.UserID] = r.N
  }
  return counts, nil
}

func (pr *projectRepo) UpdateDocumentAnalysis(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, analysis datatypes.JSON, fileName string, analysedAt time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Project{}).
    Where("id = ?", projectID).
    Updates(map[string]interface{}{
      "document_analysis":    analysis,
      "document_file_name":   fileName,
      "document_analysed_at": analysedAt,
    }).Error
}

func (pr *projectRepo) ListIDsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var ids []uuid.UUID
  if err := transaction.WithContext(ctx).
    Model(&types.Project{}).
    Where("user_id = ?", userID).
    Pluck("id", &ids).Error; err != nil {
    return nil, err
  }
  return ids, nil
}

func (pr *projectRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  return transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Delete(&types.Project{}).Error
}
