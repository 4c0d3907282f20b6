package services

import (
  "context"
  "errors"
  "fmt"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/testutil"
  "github.com/shipmydiss/backend/internal/types"
)

func planMilestoneMap(order int, title, phase, targetDate string) map[string]any {
  return map[string]any{
    "title":          title,
    "description":    "Work on " + title,
    "phase":          phase,
    "targetDate":     targetDate,
    "estimatedHours": 12.0,
    "deliverable":    title + " deliverable",
    "order":          order,
  }
}

func validPlanPayload(count int) map[string]any {
  milestones := make([]any, 0, count)
  base := time.Now().UTC()
  for i := 0; i < count; i++ {
    milestones = append(milestones, planMilestoneMap(
      // Orders arrive sparse and shuffled; the service must normalize them.
      (count-i)*3,
      fmt.Sprintf("Milestone %d", count-i),
      types.PhaseLitReview,
      base.AddDate(0, 0, (count-i)*7).Format("2006-01-02"),
    ))
  }
  return map[string]any{
    "milestones":          milestones,
    "summary":             "A backward-planned schedule with buffer before the deadline.",
    "weeksAvailable":      10,
    "totalEstimatedHours": 96.0,
    "bufferWeeks":         1,
  }
}

func validOnboarding(deadline time.Time) OnboardingInput {
  return OnboardingInput{
    Title:                "Remote work and team cohesion",
    ProjectType:          types.ProjectTypeDissertation,
    WordCount:            10000,
    Deadline:             deadline.Format("2006-01-02"),
    WeeklyHoursAvailable: 10,
    Methodology:          types.MethodologyQualitative,
    CurrentProgress:      types.ProgressChosenTopic,
  }
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  ai := &fakeAI{}
  svc := NewPlanService(db, log, ai, r.project, r.milestone, r.checkIn, r.log)
  future := time.Now().UTC().AddDate(0, 0, 70)

  cases := []struct {
    name   string
    mutate func(*OnboardingInput)
  }{
    {"empty title", func(in *OnboardingInput) { in.Title = "  " }},
    {"unknown project type", func(in *OnboardingInput) { in.ProjectType = "thesis" }},
    {"unknown methodology", func(in *OnboardingInput) { in.Methodology = "vibes" }},
    {"missing methodology", func(in *OnboardingInput) { in.Methodology = "" }},
    {"unknown progress", func(in *OnboardingInput) { in.CurrentProgress = "almost_done" }},
    {"missing progress", func(in *OnboardingInput) { in.CurrentProgress = "" }},
    {"zero weekly hours", func(in *OnboardingInput) { in.WeeklyHoursAvailable = 0 }},
    {"bad deadline format", func(in *OnboardingInput) { in.Deadline = "21/06/2026" }},
    {"past deadline", func(in *OnboardingInput) { in.Deadline = "2020-01-01" }},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      input := validOnboarding(future)
      tc.mutate(&input)
      _, err := svc.Generate(context.Background(), uuid.New(), input)
      var apiErr *apierr.Error
      if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeValidation {
        t.Fatalf("got %v, want validation error", err)
      }
      if ai.lastUserMessage() != "" {
        t.Fatalf("model called despite invalid input")
      }
    })
  }
}

func TestGeneratePersistsNormalizedPlan(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  ctx := context.Background()

  user := testutil.SeedUser(t, db, "student@example.com")
  ai := &fakeAI{generateJSON: func(system, userMsg, schemaName string) (map[string]any, error) {
    return validPlanPayload(9), nil
  }}
  svc := NewPlanService(db, log, ai, r.project, r.milestone, r.checkIn, r.log)

  result, err := svc.Generate(ctx, user.ID, validOnboarding(time.Now().UTC().AddDate(0, 0, 70)))
  if err != nil {
    t.Fatalf("generate: %v", err)
  }
  if result.Summary == "" {
    t.Fatalf("missing summary")
  }
  if len(result.Milestones) != 9 {
    t.Fatalf("milestones = %d, want 9", len(result.Milestones))
  }

  // Orders come back contiguous 1..n regardless of what the model emitted,
  // and only the first milestone starts in progress.
  for i, m := range result.Milestones {
    if m.Order != i+1 {
      t.Fatalf("milestone %d has order %d", i, m.Order)
    }
    want := types.MilestoneUpcoming
    if i == 0 {
      want = types.MilestoneInProgress
    }
    if m.Status != want {
      t.Fatalf("milestone %d status = %q, want %q", i, m.Status, want)
    }
  }
  // Sparse model orders were descending, so titles now read back ascending.
  if result.Milestones[0].Title != "Milestone 1" {
    t.Fatalf("first milestone = %q, want Milestone 1", result.Milestones[0].Title)
  }

  var stored []types.Milestone
  if err := db.Where("project_id = ?", result.Project.ID).Order("sort_order").Find(&stored).Error; err != nil {
    t.Fatalf("load milestones: %v", err)
  }
  if len(stored) != 9 {
    t.Fatalf("stored milestones = %d, want 9", len(stored))
  }

  var logCount int64
  db.Model(&types.AIInteractionLog{}).
    Where("project_id = ? AND interaction_type = ?", result.Project.ID, types.InteractionPlanGeneration).
    Count(&logCount)
  if logCount != 1 {
    t.Fatalf("interaction log rows = %d, want 1", logCount)
  }
}

func TestGenerateAttachesDocumentAnalysis(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  ctx := context.Background()

  user := testutil.SeedUser(t, db, "student@example.com")
  ai := &fakeAI{generateJSON: func(system, userMsg, schemaName string) (map[string]any, error) {
    return validPlanPayload(8), nil
  }}
  svc := NewPlanService(db, log, ai, r.project, r.milestone, r.checkIn, r.log)

  input := validOnboarding(time.Now().UTC().AddDate(0, 0, 70))
  input.DocumentAnalysis = map[string]any{
    "rawSummary": "Marking scheme weights critical analysis at 40%.",
    "assessmentCriteria": []any{
      map[string]any{"criterion": "Critical Analysis", "weight": "40%"},
    },
  }
  input.DocumentFileName = "brief.pdf"

  result, err := svc.Generate(ctx, user.ID, input)
  if err != nil {
    t.Fatalf("generate: %v", err)
  }

  // The analysis travels into the prompt so the plan can honour it.
  prompt := ai.lastUserMessage()
  if !strings.Contains(prompt, "DOCUMENT ANALYSIS:") || !strings.Contains(prompt, "Critical Analysis") {
    t.Fatalf("analysis missing from prompt:\n%s", prompt)
  }
  if !strings.Contains(prompt, "brief.pdf") {
    t.Fatalf("file name missing from prompt")
  }

  var reloaded types.Project
  if err := db.First(&reloaded, "id = ?", result.Project.ID).Error; err != nil {
    t.Fatalf("reload project: %v", err)
  }
  if len(reloaded.DocumentAnalysis) == 0 || !strings.Contains(string(reloaded.DocumentAnalysis), "Critical Analysis") {
    t.Fatalf("analysis not persisted: %s", reloaded.DocumentAnalysis)
  }
  if reloaded.DocumentFileName != "brief.pdf" {
    t.Fatalf("file name = %q", reloaded.DocumentFileName)
  }
  if reloaded.DocumentAnalysedAt == nil {
    t.Fatalf("analysed-at not set")
  }
}

func TestGenerateRejectsMilestoneCountOutOfRange(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  user := testutil.SeedUser(t, db, "student@example.com")

  for _, count := range []int{7, 15} {
    ai := &fakeAI{generateJSON: func(system, userMsg, schemaName string) (map[string]any, error) {
      return validPlanPayload(count), nil
    }}
    svc := NewPlanService(db, log, ai, r.project, r.milestone, r.checkIn, r.log)

    _, err := svc.Generate(context.Background(), user.ID, validOnboarding(time.Now().UTC().AddDate(0, 0, 70)))
    var apiErr *apierr.Error
    if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeUpstreamFormat {
      t.Fatalf("count %d: got %v, want upstream_format_error", count, err)
    }
  }

  // Nothing may be persisted when the payload is rejected.
  var projectCount int64
  db.Model(&types.Project{}).Count(&projectCount)
  if projectCount != 0 {
    t.Fatalf("projects persisted after rejected plan: %d", projectCount)
  }
}

func TestAdjustAppliesOnlyKnownMilestones(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  ctx := context.Background()

  now := time.Now().UTC()
  user := testutil.SeedUser(t, db, "student@example.com")
  project := testutil.SeedProject(t, db, user.ID, now.AddDate(0, 0, 56))
  testutil.SeedMilestone(t, db, project.ID, 1, types.MilestoneCompleted, now.AddDate(0, 0, -7))
  m2 := testutil.SeedMilestone(t, db, project.ID, 2, types.MilestoneOverdue, now.AddDate(0, 0, -2))
  m3 := testutil.SeedMilestone(t, db, project.ID, 3, types.MilestoneUpcoming, now.AddDate(0, 0, 14))

  newDate := now.AddDate(0, 0, 10).Format("2006-01-02")
  fabricated := uuid.NewString()
  ai := &fakeAI{generateJSON: func(system, userMsg, schemaName string) (map[string]any, error) {
    return map[string]any{
      "summary": "Shifted the overdue milestone out by a week.",
      "adjustedMilestones": []any{
        map[string]any{"id": m2.ID.String(), "targetDate": newDate, "status": types.MilestoneInProgress, "note": ""},
        map[string]any{"id": fabricated, "targetDate": newDate, "status": types.MilestoneUpcoming, "note": ""},
        map[string]any{"id": m3.ID.String(), "targetDate": newDate, "status": types.MilestoneCompleted, "note": ""},
      },
    }, nil
  }}
  svc := NewPlanService(db, log, ai, r.project, r.milestone, r.checkIn, r.log)

  result, err := svc.Adjust(ctx, user.ID, project.ID, "Fell behind during fieldwork")
  if err != nil {
    t.Fatalf("adjust: %v", err)
  }
  if result.AdjustedCount != 1 {
    t.Fatalf("adjusted count = %d, want 1", result.AdjustedCount)
  }
  if len(result.SkippedIDs) != 2 {
    t.Fatalf("skipped = %v, want the fabricated id and the disallowed status", result.SkippedIDs)
  }

  var reloaded types.Milestone
  if err := db.First(&reloaded, "id = ?", m2.ID).Error; err != nil {
    t.Fatalf("reload m2: %v", err)
  }
  if reloaded.Status != types.MilestoneInProgress {
    t.Fatalf("m2 status = %q, want in_progress", reloaded.Status)
  }
  if reloaded.TargetDate.Format("2006-01-02") != newDate {
    t.Fatalf("m2 target date = %s, want %s", reloaded.TargetDate.Format("2006-01-02"), newDate)
  }

  // A status outside upcoming/in_progress leaves the row untouched.
  reloaded = types.Milestone{}
  if err := db.First(&reloaded, "id = ?", m3.ID).Error; err != nil {
    t.Fatalf("reload m3: %v", err)
  }
  if reloaded.Status != types.MilestoneUpcoming {
    t.Fatalf("m3 status = %q, want unchanged upcoming", reloaded.Status)
  }

  var logRow types.AIInteractionLog
  if err := db.First(&logRow, "project_id = ? AND interaction_type = ?", project.ID, types.InteractionPlanAdjustment).Error; err != nil {
    t.Fatalf("load adjustment log: %v", err)
  }
  if logRow.UserInput != "Fell behind during fieldwork" {
    t.Fatalf("log input = %q", logRow.UserInput)
  }
}

func TestAdjustHidesForeignProject(t *testing.T) {
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)

  owner := testutil.SeedUser(t, db, "owner@example.com")
  other := testutil.SeedUser(t, db, "other@example.com")
  project := testutil.SeedProject(t, db, owner.ID, time.Now().UTC().AddDate(0, 0, 30))

  svc := NewPlanService(db, log, &fakeAI{}, r.project, r.milestone, r.checkIn, r.log)
  _, err := svc.Adjust(context.Background(), other.ID, project.ID, "")
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeNotFound {
    t.Fatalf("got %v, want not_found", err)
  }
}
