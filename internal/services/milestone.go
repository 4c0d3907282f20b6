package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/types"
)

// Students can only move a milestone between these three states by hand.
// overdue and adjusted are system-assigned.
var studentSettableStatuses = map[string]bool{
  types.MilestoneCompleted:  true,
  types.MilestoneInProgress: true,
  types.MilestoneUpcoming:   true,
}

type MilestoneService interface {
  UpdateStatus(ctx context.Context, userID, milestoneID uuid.UUID, status string) (*types.Milestone, error)
}

type milestoneService struct {
  db            *gorm.DB
  log           *logger.Logger
  projectRepo   repos.ProjectRepo
  milestoneRepo repos.MilestoneRepo
}

func NewMilestoneService(
  db *gorm.DB,
  baseLog *logger.Logger,
  projectRepo repos.ProjectRepo,
  milestoneRepo repos.MilestoneRepo,
) MilestoneService {
  return &milestoneService{
    db:            db,
    log:           baseLog.With("service", "MilestoneService"),
    projectRepo:   projectRepo,
    milestoneRepo: milestoneRepo,
  }
}

func (ms *milestoneService) UpdateStatus(ctx context.Context, userID, milestoneID uuid.UUID, status string) (*types.Milestone, error) {
  if !studentSettableStatuses[status] {
    return nil, apierr.Validation(fmt.Errorf("status must be one of completed, in_progress, upcoming"))
  }

  found, err := ms.milestoneRepo.GetByIDs(ctx, nil, []uuid.UUID{milestoneID})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, apierr.NotFound(fmt.Errorf("milestone %s not found", milestoneID))
  }
  milestone := found[0]

  project, err := ms.projectRepo.GetOwned(ctx, nil, milestone.ProjectID, userID)
  if err != nil {
    return nil, err
  }
  if project == nil {
    return nil, apierr.NotFound(fmt.Errorf("milestone %s not found", milestoneID))
  }

  affected, err := ms.milestoneRepo.UpdateStatus(ctx, nil, milestoneID, status)
  if err != nil {
    return nil, err
  }
  if affected == 0 {
    return nil, apierr.NotFound(fmt.Errorf("milestone %s not found", milestoneID))
  }

  milestone.Status = status
  ms.log.Info("Milestone status updated",
    "milestone_id", milestoneID.String(),
    "status", status,
  )
  return milestone, nil
}
