package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
)

type LoginTokenRepo interface {
  Create(ctx context.Context, tx *gorm.DB, tokens []*types.LoginToken) ([]*types.LoginToken, error)
  GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.LoginToken, error)
  MarkConsumed(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID, at time.Time) error
  DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type loginTokenRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewLoginTokenRepo(db *gorm.DB, baseLog *logger.Logger) LoginTokenRepo {
  return &loginTokenRepo{db: db, log: baseLog.With("repo", "LoginTokenRepo")}
}

func (lr *loginTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.LoginToken) ([]*types.LoginToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = lr.db
  }
  if len(tokens) == 0 {
    return []*types.LoginToken{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&tokens).Error; err != nil {
    return nil, err
  }
  return tokens, nil
}

func (lr *loginTokenRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.LoginToken, error) {
  transaction := tx
  if transaction == nil {
    transaction = lr.db
  }
  var results []*types.LoginToken
  if err := transaction.WithContext(ctx).
    Where("token = ?", token).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (lr *loginTokenRepo) MarkConsumed(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID, at time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = lr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.LoginToken{}).
    Where("id = ?", tokenID).
    Update("consumed_at", at).Error
}

func (lr *loginTokenRepo) DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = lr.db
  }
  if len(userIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("user_id IN ?", userIDs).
    Delete(&types.LoginToken{}).Error
}
