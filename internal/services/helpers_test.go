package services

import (
  "context"
  "sync"
  "testing"

  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/platform/sendgrid"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/testutil"
)

// fakeAI scripts model responses and records the last prompt it received.
type fakeAI struct {
  mu           sync.Mutex
  generateJSON func(system, user, schemaName string) (map[string]any, error)
  complete     func(system, user string) (string, error)
  lastUser     string
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
  f.mu.Lock()
  f.lastUser = user
  f.mu.Unlock()
  if f.generateJSON == nil {
    return nil, nil
  }
  return f.generateJSON(system, user, schemaName)
}

func (f *fakeAI) Complete(ctx context.Context, system, user string) (string, error) {
  f.mu.Lock()
  f.lastUser = user
  f.mu.Unlock()
  if f.complete == nil {
    return "", nil
  }
  return f.complete(system, user)
}

func (f *fakeAI) lastUserMessage() string {
  f.mu.Lock()
  defer f.mu.Unlock()
  return f.lastUser
}

// fakeEmail records every send; failFor makes sends to that address fail.
type fakeEmail struct {
  mu      sync.Mutex
  sent    []sendgrid.SendEmailRequest
  failFor map[string]error
}

func (f *fakeEmail) Send(ctx context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
  f.mu.Lock()
  defer f.mu.Unlock()
  if f.failFor != nil && len(req.To) > 0 {
    if err, ok := f.failFor[req.To[0].Email]; ok {
      return nil, err
    }
  }
  f.sent = append(f.sent, req)
  return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

func (f *fakeEmail) sentTo() []string {
  f.mu.Lock()
  defer f.mu.Unlock()
  out := make([]string, 0, len(f.sent))
  for _, req := range f.sent {
    if len(req.To) > 0 {
      out = append(out, req.To[0].Email)
    }
  }
  return out
}

type testRepos struct {
  user       repos.UserRepo
  loginToken repos.LoginTokenRepo
  project    repos.ProjectRepo
  milestone  repos.MilestoneRepo
  checkIn    repos.CheckInRepo
  log        repos.AIInteractionLogRepo
}

func newTestRepos(tb testing.TB, db *gorm.DB) (testRepos, *logger.Logger) {
  tb.Helper()
  log := testutil.Logger(tb)
  return testRepos{
    user:       repos.NewUserRepo(db, log),
    loginToken: repos.NewLoginTokenRepo(db, log),
    project:    repos.NewProjectRepo(db, log),
    milestone:  repos.NewMilestoneRepo(db, log),
    checkIn:    repos.NewCheckInRepo(db, log),
    log:        repos.NewAIInteractionLogRepo(db, log),
  }, log
}
