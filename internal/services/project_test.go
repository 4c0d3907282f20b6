package services

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/testutil"
  "github.com/shipmydiss/backend/internal/types"
)

func newProjectService(t *testing.T) (ProjectService, *gorm.DB) {
  t.Helper()
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  transparency := NewTransparencyService(log)
  svc := NewProjectService(db, log, r.project, r.milestone, r.checkIn, r.log, transparency)
  return svc, db
}

func TestGetCurrentReturnsNilWithoutProjects(t *testing.T) {
  svc, db := newProjectService(t)
  user := testutil.SeedUser(t, db, "student@example.com")

  view, err := svc.GetCurrent(context.Background(), user.ID)
  if err != nil {
    t.Fatalf("get current: %v", err)
  }
  if view != nil {
    t.Fatalf("expected nil view, got %+v", view)
  }
}

func TestGetCurrentIncludesMilestonesAndLatestCheckIn(t *testing.T) {
  svc, db := newProjectService(t)
  ctx := context.Background()

  now := time.Now().UTC()
  user := testutil.SeedUser(t, db, "student@example.com")
  project := testutil.SeedProject(t, db, user.ID, now.AddDate(0, 0, 42))
  testutil.SeedMilestone(t, db, project.ID, 1, types.MilestoneInProgress, now.AddDate(0, 0, 7))
  testutil.SeedMilestone(t, db, project.ID, 2, types.MilestoneUpcoming, now.AddDate(0, 0, 14))
  testutil.SeedCheckIn(t, db, project.ID, 1, "week one")
  testutil.SeedCheckIn(t, db, project.ID, 2, "week two")

  view, err := svc.GetCurrent(ctx, user.ID)
  if err != nil {
    t.Fatalf("get current: %v", err)
  }
  if view == nil || view.Project.ID != project.ID {
    t.Fatalf("wrong project returned")
  }
  if len(view.Milestones) != 2 {
    t.Fatalf("milestones = %d, want 2", len(view.Milestones))
  }
  if view.Milestones[0].Order != 1 {
    t.Fatalf("milestones not ordered: first order = %d", view.Milestones[0].Order)
  }
  if view.LatestCheckIn == nil || view.LatestCheckIn.WeekNumber != 2 {
    t.Fatalf("latest check-in = %+v, want week 2", view.LatestCheckIn)
  }
}

func TestExportTransparencyDefaultsToLatestProject(t *testing.T) {
  svc, db := newProjectService(t)
  ctx := context.Background()

  user := testutil.SeedUser(t, db, "student@example.com")
  project := testutil.SeedProject(t, db, user.ID, time.Now().UTC().AddDate(0, 0, 42))
  testutil.SeedInteractionLog(t, db, project.ID, types.InteractionCheckin,
    `{"completedTasks":[],"blockers":"","moodRating":4}`, "Nice week.")
  testutil.SeedInteractionLog(t, db, project.ID, types.InteractionPlanGeneration, "{}", "{}")

  export, err := svc.ExportTransparency(ctx, user.ID, uuid.Nil)
  if err != nil {
    t.Fatalf("export: %v", err)
  }
  if export.Summary.TotalInteractions != 2 {
    t.Fatalf("total = %d, want 2", export.Summary.TotalInteractions)
  }
  if export.Project.Title != project.Title {
    t.Fatalf("project title = %q", export.Project.Title)
  }
}

func TestExportTransparencyNotFound(t *testing.T) {
  svc, db := newProjectService(t)
  ctx := context.Background()

  // No projects at all.
  nobody := testutil.SeedUser(t, db, "nobody@example.com")
  _, err := svc.ExportTransparency(ctx, nobody.ID, uuid.Nil)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeNotFound {
    t.Fatalf("got %v, want not_found", err)
  }

  // Someone else's project by id.
  owner := testutil.SeedUser(t, db, "owner@example.com")
  project := testutil.SeedProject(t, db, owner.ID, time.Now().UTC().AddDate(0, 0, 42))
  _, err = svc.ExportTransparency(ctx, nobody.ID, project.ID)
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeNotFound {
    t.Fatalf("got %v, want not_found", err)
  }
}
