package services

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/testutil"
  "github.com/shipmydiss/backend/internal/types"
)

func TestUpdateMilestoneStatus(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  svc := NewMilestoneService(db, log, r.project, r.milestone)
  ctx := context.Background()

  now := time.Now().UTC()
  user := testutil.SeedUser(t, db, "student@example.com")
  project := testutil.SeedProject(t, db, user.ID, now.AddDate(0, 0, 42))
  milestone := testutil.SeedMilestone(t, db, project.ID, 1, types.MilestoneInProgress, now.AddDate(0, 0, 7))

  got, err := svc.UpdateStatus(ctx, user.ID, milestone.ID, types.MilestoneCompleted)
  if err != nil {
    t.Fatalf("update: %v", err)
  }
  if got.Status != types.MilestoneCompleted {
    t.Fatalf("returned status = %q", got.Status)
  }

  var reloaded types.Milestone
  if err := db.First(&reloaded, "id = ?", milestone.ID).Error; err != nil {
    t.Fatalf("reload: %v", err)
  }
  if reloaded.Status != types.MilestoneCompleted {
    t.Fatalf("stored status = %q", reloaded.Status)
  }
}

func TestUpdateMilestoneStatusRejectsSystemStates(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  svc := NewMilestoneService(db, log, r.project, r.milestone)

  // overdue and adjusted are system-assigned, never student-settable.
  for _, status := range []string{types.MilestoneOverdue, types.MilestoneAdjusted, "done"} {
    _, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), status)
    var apiErr *apierr.Error
    if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeValidation {
      t.Fatalf("status %q: got %v, want validation error", status, err)
    }
  }
}

func TestUpdateMilestoneStatusHidesForeignMilestone(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  svc := NewMilestoneService(db, log, r.project, r.milestone)

  now := time.Now().UTC()
  owner := testutil.SeedUser(t, db, "owner@example.com")
  other := testutil.SeedUser(t, db, "other@example.com")
  project := testutil.SeedProject(t, db, owner.ID, now.AddDate(0, 0, 42))
  milestone := testutil.SeedMilestone(t, db, project.ID, 1, types.MilestoneUpcoming, now.AddDate(0, 0, 7))

  _, err := svc.UpdateStatus(context.Background(), other.ID, milestone.ID, types.MilestoneCompleted)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeNotFound {
    t.Fatalf("got %v, want not_found", err)
  }

  var reloaded types.Milestone
  if err := db.First(&reloaded, "id = ?", milestone.ID).Error; err != nil {
    t.Fatalf("reload: %v", err)
  }
  if reloaded.Status != types.MilestoneUpcoming {
    t.Fatalf("milestone was modified: %q", reloaded.Status)
  }
}
