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

type ProjectView struct {
  Project       *types.Project     `json:"project"`
  Milestones    []*types.Milestone `json:"milestones"`
  LatestCheckIn *types.CheckIn     `json:"latest_check_in,omitempty"`
}

type ProjectService interface {
  ListProjects(ctx context.Context, userID uuid.UUID) ([]*ProjectView, error)
  // GetCurrent returns the caller's most recent project, nil when they have
  // none yet.
  GetCurrent(ctx context.Context, userID uuid.UUID) (*ProjectView, error)
  // ExportTransparency builds the full AI disclosure for a project.
  // projectID may be uuid.Nil to export the most recent project.
  ExportTransparency(ctx context.Context, userID, projectID uuid.UUID) (*TransparencyExport, error)
}

type projectService struct {
  db            *gorm.DB
  log           *logger.Logger
  projectRepo   repos.ProjectRepo
  milestoneRepo repos.MilestoneRepo
  checkInRepo   repos.CheckInRepo
  logRepo       repos.AIInteractionLogRepo
  transparency  TransparencyService
}

func NewProjectService(
  db *gorm.DB,
  baseLog *logger.Logger,
  projectRepo repos.ProjectRepo,
  milestoneRepo repos.MilestoneRepo,
  checkInRepo repos.CheckInRepo,
  logRepo repos.AIInteractionLogRepo,
  transparency TransparencyService,
) ProjectService {
  return &projectService{
    db:            db,
    log:           baseLog.With("service", "ProjectService"),
    projectRepo:   projectRepo,
    milestoneRepo: milestoneRepo,
    checkInRepo:   checkInRepo,
    logRepo:       logRepo,
    transparency:  transparency,
  }
}

func (ps *projectService) buildView(ctx context.Context, project *types.Project) (*ProjectView, error) {
  milestones, err := ps.milestoneRepo.ListByProjectID(ctx, nil, project.ID)
  if err != nil {
    return nil, err
  }
  recent, err := ps.checkInRepo.ListRecentByProjectID(ctx, nil, project.ID, 1)
  if err != nil {
    return nil, err
  }
  view := &ProjectView{Project: project, Milestones: milestones}
  if len(recent) > 0 {
    view.LatestCheckIn = recent[0]
  }
  return view, nil
}

func (ps *projectService) ListProjects(ctx context.Context, userID uuid.UUID) ([]*ProjectView, error) {
  projects, err := ps.projectRepo.ListByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  views := make([]*ProjectView, 0, len(projects))
  for _, p := range projects {
    view, err := ps.buildView(ctx, p)
    if err != nil {
      return nil, err
    }
    views = append(views, view)
  }
  return views, nil
}

func (ps *projectService) GetCurrent(ctx context.Context, userID uuid.UUID) (*ProjectView, error) {
  project, err := ps.projectRepo.LatestByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if project == nil {
    return nil, nil
  }
  return ps.buildView(ctx, project)
}

func (ps *projectService) ExportTransparency(ctx context.Context, userID, projectID uuid.UUID) (*TransparencyExport, error) {
  var project *types.Project
  var err error
  if projectID != uuid.Nil {
    project, err = ps.projectRepo.GetOwned(ctx, nil, projectID, userID)
  } else {
    project, err = ps.projectRepo.LatestByUserID(ctx, nil, userID)
  }
  if err != nil {
    return nil, err
  }
  if project == nil {
    return nil, apierr.NotFound(fmt.Errorf("no project found"))
  }

  logs, err := ps.logRepo.ListByProjectID(ctx, nil, project.ID)
  if err != nil {
    return nil, err
  }

  export := ps.transparency.BuildExport(project, logs)
  ps.log.Info("Transparency export built",
    "project_id", project.ID.String(),
    "interactions", export.Summary.TotalInteractions,
  )
  return export, nil
}
