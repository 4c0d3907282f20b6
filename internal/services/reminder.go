package services

import (
  "context"
  "fmt"
  "sync"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/platform/sendgrid"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/types"
)

const (
  reminderQuietPeriod     = 7 * 24 * time.Hour
  reminderSendConcurrency = 5
)

type SweepResult struct {
  Scanned int `json:"scanned"`
  Sent    int `json:"sent"`
  Skipped int `json:"skipped"`
  Failed  int `json:"failed"`
}

// ReminderService sends weekly check-in nudges. Delivery is at-least-once:
// two concurrent sweeps may both email the same student, which is accepted
// over the cost of locking.
type ReminderService interface {
  RunSweep(ctx context.Context) (*SweepResult, error)
}

type reminderService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  projectRepo   repos.ProjectRepo
  milestoneRepo repos.MilestoneRepo
  checkInRepo   repos.CheckInRepo
  email         sendgrid.Client
  appURL        string
}

func NewReminderService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  projectRepo repos.ProjectRepo,
  milestoneRepo repos.MilestoneRepo,
  checkInRepo repos.CheckInRepo,
  email sendgrid.Client,
  appURL string,
) ReminderService {
  return &reminderService{
    db:            db,
    log:           baseLog.With("service", "ReminderService"),
    userRepo:      userRepo,
    projectRepo:   projectRepo,
    milestoneRepo: milestoneRepo,
    checkInRepo:   checkInRepo,
    email:         email,
    appURL:        appURL,
  }
}

func (rs *reminderService) RunSweep(ctx context.Context) (*SweepResult, error) {
  now := time.Now().UTC()

  projects, err := rs.projectRepo.ListWithDeadlineAfter(ctx, nil, now)
  if err != nil {
    return nil, err
  }

  result := &SweepResult{Scanned: len(projects)}
  var mu sync.Mutex

  g, gctx := errgroup.WithContext(ctx)
  g.SetLimit(reminderSendConcurrency)

  for _, project := range projects {
    project := project
    g.Go(func() error {
      sent, sendErr := rs.remindProject(gctx, project, now)
      mu.Lock()
      defer mu.Unlock()
      switch {
      case sendErr != nil:
        result.Failed++
        rs.log.Warn("Reminder failed",
          "project_id", project.ID.String(),
          "error", sendErr.Error(),
        )
      case sent:
        result.Sent++
      default:
        result.Skipped++
      }
      // Failures are counted, not propagated: one bad address must not
      // abort the sweep.
      return nil
    })
  }
  if err := g.Wait(); err != nil {
    return nil, err
  }

  rs.log.Info("Reminder sweep finished",
    "scanned", result.Scanned,
    "sent", result.Sent,
    "skipped", result.Skipped,
    "failed", result.Failed,
  )
  return result, nil
}

func (rs *reminderService) remindProject(ctx context.Context, project *types.Project, now time.Time) (bool, error) {
  recent, err := rs.checkInRepo.ExistsSince(ctx, nil, project.ID, now.Add(-reminderQuietPeriod))
  if err != nil {
    return false, err
  }
  if recent {
    return false, nil
  }

  users, err := rs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{project.UserID})
  if err != nil {
    return false, err
  }
  if len(users) == 0 || users[0].Email == "" {
    return false, nil
  }
  user := users[0]

  weeks := weeksRemaining(now, project.Deadline)

  var nextMilestone *types.Milestone
  milestones, err := rs.milestoneRepo.ListByProjectID(ctx, nil, project.ID)
  if err != nil {
    return false, err
  }
  for _, m := range milestones {
    if m.Status == types.MilestoneInProgress || m.Status == types.MilestoneUpcoming {
      nextMilestone = m
      break
    }
  }

  body := fmt.Sprintf(
    "Hi%s,\n\nIt's been over a week since your last check-in on \"%s\".\n\nDeadline: %s (%d weeks away)\n",
    emailGreeting(user.Name), project.Title, project.Deadline.Format("2 January 2006"), weeks,
  )
  if nextMilestone != nil {
    body += fmt.Sprintf("Next up: %s (due %s)\n", nextMilestone.Title, nextMilestone.TargetDate.Format("2 January 2006"))
  }
  body += fmt.Sprintf("\nTwo minutes is all a check-in takes:\n\n%s/checkin\n", rs.appURL)

  _, err = rs.email.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: user.Email, Name: user.Name}},
    Subject: "Quick check-in? Your dissertation misses you",
    Text:    body,
  })
  if err != nil {
    return false, err
  }
  return true, nil
}
