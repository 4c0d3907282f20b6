package services

import (
  "context"
  "encoding/json"
  "fmt"
  "math"
  "sort"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/types"
)

type OnboardingInput struct {
  Title                string   `json:"title"`
  ProjectType          string   `json:"projectType"`
  WordCount            int      `json:"wordCount"`
  Deadline             string   `json:"deadline"`
  WeeklyHoursAvailable int      `json:"weeklyHoursAvailable"`
  Methodology          string   `json:"methodology"`
  CurrentProgress      string   `json:"currentProgress"`
  BlockedWeeks         []string `json:"blockedWeeks"`
  OtherDeadlines       []struct {
    Title string `json:"title"`
    Date  string `json:"date"`
  } `json:"otherDeadlines"`
  DocumentAnalysis map[string]any `json:"documentAnalysis,omitempty"`
  DocumentFileName string         `json:"documentFileName,omitempty"`
}

type GeneratedPlanResult struct {
  Project    *types.Project     `json:"project"`
  Milestones []*types.Milestone `json:"milestones"`
  Summary    string             `json:"summary"`
}

type PlanAdjustmentResult struct {
  Summary       string   `json:"summary"`
  AdjustedCount int      `json:"adjusted_count"`
  SkippedIDs    []string `json:"skipped_ids,omitempty"`
}

type PlanService interface {
  Generate(ctx context.Context, userID uuid.UUID, input OnboardingInput) (*GeneratedPlanResult, error)
  Adjust(ctx context.Context, userID, projectID uuid.UUID, reason string) (*PlanAdjustmentResult, error)
}

type planService struct {
  db            *gorm.DB
  log           *logger.Logger
  ai            OpenAIClient
  projectRepo   repos.ProjectRepo
  milestoneRepo repos.MilestoneRepo
  checkInRepo   repos.CheckInRepo
  logRepo       repos.AIInteractionLogRepo
}

func NewPlanService(
  db *gorm.DB,
  baseLog *logger.Logger,
  ai OpenAIClient,
  projectRepo repos.ProjectRepo,
  milestoneRepo repos.MilestoneRepo,
  checkInRepo repos.CheckInRepo,
  logRepo repos.AIInteractionLogRepo,
) PlanService {
  return &planService{
    db:            db,
    log:           baseLog.With("service", "PlanService"),
    ai:            ai,
    projectRepo:   projectRepo,
    milestoneRepo: milestoneRepo,
    checkInRepo:   checkInRepo,
    logRepo:       logRepo,
  }
}

var validProjectTypes = map[string]bool{
  types.ProjectTypeDissertation:  true,
  types.ProjectTypeAssignment:    true,
  types.ProjectTypeProject:       true,
  types.ProjectTypeExtendedEssay: true,
}

var validMethodologies = map[string]bool{
  types.MethodologyQualitative:     true,
  types.MethodologyQuantitative:    true,
  types.MethodologyMixed:           true,
  types.MethodologyLiteratureBased: true,
  types.MethodologyNotSure:         true,
}

var validProgress = map[string]bool{
  types.ProgressNotStarted:     true,
  types.ProgressChosenTopic:    true,
  types.ProgressStartedReading: true,
  types.ProgressHaveProposal:   true,
  types.ProgressCollectingData: true,
}

// weeksRemaining rounds up: any partial week still counts as a week of
// runway. Never negative.
func weeksRemaining(now, deadline time.Time) int {
  days := deadline.Sub(now).Hours() / 24
  weeks := int(math.Ceil(days / 7))
  if weeks < 0 {
    return 0
  }
  return weeks
}

type generatedMilestone struct {
  Title          string  `json:"title"`
  Description    string  `json:"description"`
  Phase          string  `json:"phase"`
  TargetDate     string  `json:"targetDate"`
  EstimatedHours float64 `json:"estimatedHours"`
  Deliverable    string  `json:"deliverable"`
  Order          int     `json:"order"`
}

type generatedPlan struct {
  Milestones          []generatedMilestone `json:"milestones"`
  Summary             string               `json:"summary"`
  WeeksAvailable      int                  `json:"weeksAvailable"`
  TotalEstimatedHours float64              `json:"totalEstimatedHours"`
  BufferWeeks         int                  `json:"bufferWeeks"`
}

func (ps *planService) Generate(ctx context.Context, userID uuid.UUID, input OnboardingInput) (*GeneratedPlanResult, error) {
  if strings.TrimSpace(input.Title) == "" {
    return nil, apierr.Validation(fmt.Errorf("title is required"))
  }
  if !validProjectTypes[input.ProjectType] {
    return nil, apierr.Validation(fmt.Errorf("invalid project type %q", input.ProjectType))
  }
  if !validMethodologies[input.Methodology] {
    return nil, apierr.Validation(fmt.Errorf("invalid methodology %q", input.Methodology))
  }
  if !validProgress[input.CurrentProgress] {
    return nil, apierr.Validation(fmt.Errorf("invalid current progress %q", input.CurrentProgress))
  }
  if input.WeeklyHoursAvailable <= 0 {
    return nil, apierr.Validation(fmt.Errorf("weeklyHoursAvailable must be positive"))
  }
  deadline, err := time.Parse("2006-01-02", input.Deadline)
  if err != nil {
    return nil, apierr.Validation(fmt.Errorf("deadline must be YYYY-MM-DD: %w", err))
  }
  now := time.Now().UTC()
  if !deadline.After(now) {
    return nil, apierr.Validation(fmt.Errorf("deadline must be in the future"))
  }

  weeks := weeksRemaining(now, deadline)
  userMessage := ps.buildGenerateMessage(input, now, weeks)

  raw, err := ps.ai.GenerateJSON(ctx, planGenerationSystemPrompt, userMessage, "dissertation_plan", planSchema())
  if err != nil {
    return nil, fmt.Errorf("plan generation failed: %w", err)
  }

  plan, err := decodePlan(raw)
  if err != nil {
    return nil, apierr.UpstreamFormat(err)
  }

  project := &types.Project{
    ID:                   uuid.New(),
    UserID:               userID,
    Title:                input.Title,
    Type:                 input.ProjectType,
    WordCount:            input.WordCount,
    Deadline:             deadline,
    WeeklyHoursAvailable: input.WeeklyHoursAvailable,
    Methodology:          input.Methodology,
    CurrentProgress:      input.CurrentProgress,
    CurrentPhase:         plan.Milestones[0].Phase,
  }
  if len(input.BlockedWeeks) > 0 {
    if b, mErr := json.Marshal(input.BlockedWeeks); mErr == nil {
      project.BlockedWeeks = datatypes.JSON(b)
    }
  }
  if len(input.OtherDeadlines) > 0 {
    if b, mErr := json.Marshal(input.OtherDeadlines); mErr == nil {
      project.OtherDeadlines = datatypes.JSON(b)
    }
  }
  if len(input.DocumentAnalysis) > 0 {
    if b, mErr := json.Marshal(input.DocumentAnalysis); mErr == nil {
      analysedAt := now
      project.DocumentAnalysis = datatypes.JSON(b)
      project.DocumentFileName = input.DocumentFileName
      project.DocumentAnalysedAt = &analysedAt
    }
  }

  milestones, err := buildMilestones(project.ID, plan.Milestones)
  if err != nil {
    return nil, apierr.UpstreamFormat(err)
  }

  inputJSON, _ := json.Marshal(input)
  outputJSON, _ := json.Marshal(raw)
  logRow := &types.AIInteractionLog{
    ID:              uuid.New(),
    ProjectID:       project.ID,
    InteractionType: types.InteractionPlanGeneration,
    UserInput:       string(inputJSON),
    AIOutput:        string(outputJSON),
  }

  err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, txErr := ps.projectRepo.Create(ctx, tx, []*types.Project{project}); txErr != nil {
      return txErr
    }
    if _, txErr := ps.milestoneRepo.Create(ctx, tx, milestones); txErr != nil {
      return txErr
    }
    if _, txErr := ps.logRepo.Create(ctx, tx, []*types.AIInteractionLog{logRow}); txErr != nil {
      return txErr
    }
    return nil
  })
  if err != nil {
    return nil, fmt.Errorf("failed to persist generated plan: %w", err)
  }

  ps.log.Info("Generated plan",
    "project_id", project.ID.String(),
    "user_id", userID.String(),
    "milestones", len(milestones),
    "weeks_remaining", weeks,
  )

  return &GeneratedPlanResult{
    Project:    project,
    Milestones: milestones,
    Summary:    plan.Summary,
  }, nil
}

func (ps *planService) buildGenerateMessage(input OnboardingInput, now time.Time, weeks int) string {
  var sb strings.Builder
  fmt.Fprintf(&sb, "Generate a project plan for the following dissertation/assignment:\n\n")
  fmt.Fprintf(&sb, "PROJECT DETAILS:\n")
  fmt.Fprintf(&sb, "- Type: %s\n", input.ProjectType)
  fmt.Fprintf(&sb, "- Title/Topic: %s\n", input.Title)
  fmt.Fprintf(&sb, "- Word count: %d words\n", input.WordCount)
  fmt.Fprintf(&sb, "- Submission deadline: %s\n", input.Deadline)
  fmt.Fprintf(&sb, "- Weeks until deadline: %d\n", weeks)
  fmt.Fprintf(&sb, "- Weekly hours available: %d hours/week\n", input.WeeklyHoursAvailable)
  fmt.Fprintf(&sb, "- Methodology: %s\n", input.Methodology)
  fmt.Fprintf(&sb, "- Current progress: %s\n", input.CurrentProgress)
  fmt.Fprintf(&sb, "- Today's date: %s\n", now.Format("2006-01-02"))
  if len(input.BlockedWeeks) > 0 {
    fmt.Fprintf(&sb, "- Blocked weeks (cannot work): %s\n", strings.Join(input.BlockedWeeks, ", "))
  }
  for _, d := range input.OtherDeadlines {
    if d.Title != "" {
      fmt.Fprintf(&sb, "- Other commitment: %s (%s)\n", d.Title, d.Date)
    }
  }
  fmt.Fprintf(&sb, "\nTotal available hours (approx): %d hours\n", weeks*input.WeeklyHoursAvailable)
  if len(input.DocumentAnalysis) > 0 {
    if b, mErr := json.Marshal(input.DocumentAnalysis); mErr == nil {
      fmt.Fprintf(&sb, "\nDOCUMENT ANALYSIS:\n")
      if input.DocumentFileName != "" {
        fmt.Fprintf(&sb, "Source file: %s\n", input.DocumentFileName)
      }
      fmt.Fprintf(&sb, "%s\n", b)
    }
  }
  fmt.Fprintf(&sb, "\nGenerate the plan now.")
  return sb.String()
}

func decodePlan(raw map[string]any) (*generatedPlan, error) {
  b, err := json.Marshal(raw)
  if err != nil {
    return nil, err
  }
  var plan generatedPlan
  if err := json.Unmarshal(b, &plan); err != nil {
    return nil, fmt.Errorf("plan payload did not match schema: %w", err)
  }
  if plan.Summary == "" {
    return nil, fmt.Errorf("plan payload missing summary")
  }
  if len(plan.Milestones) < 8 || len(plan.Milestones) > 14 {
    return nil, fmt.Errorf("expected 8-14 milestones, got %d", len(plan.Milestones))
  }
  return &plan, nil
}

// buildMilestones converts model output into rows, normalizing orders to a
// contiguous 1..n and marking the first milestone in_progress.
func buildMilestones(projectID uuid.UUID, generated []generatedMilestone) ([]*types.Milestone, error) {
  sorted := make([]generatedMilestone, len(generated))
  copy(sorted, generated)
  sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

  milestones := make([]*types.Milestone, 0, len(sorted))
  for i, gm := range sorted {
    if strings.TrimSpace(gm.Title) == "" {
      return nil, fmt.Errorf("milestone %d has no title", i+1)
    }
    if !types.ValidPhase(gm.Phase) {
      return nil, fmt.Errorf("milestone %q has unknown phase %q", gm.Title, gm.Phase)
    }
    targetDate, err := time.Parse("2006-01-02", gm.TargetDate)
    if err != nil {
      return nil, fmt.Errorf("milestone %q has invalid target date %q", gm.Title, gm.TargetDate)
    }
    status := types.MilestoneUpcoming
    if i == 0 {
      status = types.MilestoneInProgress
    }
    milestones = append(milestones, &types.Milestone{
      ID:             uuid.New(),
      ProjectID:      projectID,
      Title:          gm.Title,
      Description:    gm.Description,
      Phase:          gm.Phase,
      TargetDate:     targetDate,
      EstimatedHours: int(math.Round(gm.EstimatedHours)),
      Deliverable:    gm.Deliverable,
      Order:          i + 1,
      Status:         status,
    })
  }
  return milestones, nil
}

type adjustedMilestone struct {
  ID         string `json:"id"`
  TargetDate string `json:"targetDate"`
  Status     string `json:"status"`
  Note       string `json:"note"`
}

type planAdjustment struct {
  AdjustedMilestones []adjustedMilestone `json:"adjustedMilestones"`
  Summary            string              `json:"summary"`
}

func (ps *planService) Adjust(ctx context.Context, userID, projectID uuid.UUID, reason string) (*PlanAdjustmentResult, error) {
  project, err := ps.projectRepo.GetOwned(ctx, nil, projectID, userID)
  if err != nil {
    return nil, err
  }
  if project == nil {
    return nil, apierr.NotFound(fmt.Errorf("project %s not found", projectID))
  }

  milestones, err := ps.milestoneRepo.ListByProjectID(ctx, nil, projectID)
  if err != nil {
    return nil, err
  }

  now := time.Now().UTC()
  weeks := weeksRemaining(now, project.Deadline)

  var completed, remaining []*types.Milestone
  for _, m := range milestones {
    if m.Status == types.MilestoneCompleted {
      completed = append(completed, m)
    } else {
      remaining = append(remaining, m)
    }
  }

  userMessage := buildAdjustMessage(project, completed, remaining, reason, now, weeks)

  raw, err := ps.ai.GenerateJSON(ctx, planGenerationSystemPrompt, userMessage, "plan_adjustment", planAdjustmentSchema())
  if err != nil {
    return nil, fmt.Errorf("plan adjustment failed: %w", err)
  }

  adjustment, err := decodeAdjustment(raw)
  if err != nil {
    return nil, apierr.UpstreamFormat(err)
  }

  // Only milestones that actually belong to this project may be touched;
  // anything else the model invented is skipped and reported.
  known := make(map[uuid.UUID]bool, len(milestones))
  for _, m := range milestones {
    known[m.ID] = true
  }

  type acceptedUpdate struct {
    id         uuid.UUID
    targetDate time.Time
    status     string
  }
  var accepted []acceptedUpdate
  var skipped []string
  for _, am := range adjustment.AdjustedMilestones {
    id, parseErr := uuid.Parse(am.ID)
    if parseErr != nil || !known[id] {
      skipped = append(skipped, am.ID)
      ps.log.Warn("Skipping adjustment for unknown milestone",
        "project_id", projectID.String(),
        "milestone_id", am.ID,
      )
      continue
    }
    if am.Status != types.MilestoneUpcoming && am.Status != types.MilestoneInProgress {
      skipped = append(skipped, am.ID)
      ps.log.Warn("Skipping adjustment with disallowed status",
        "project_id", projectID.String(),
        "milestone_id", am.ID,
        "status", am.Status,
      )
      continue
    }
    targetDate, parseErr := time.Parse("2006-01-02", am.TargetDate)
    if parseErr != nil {
      skipped = append(skipped, am.ID)
      continue
    }
    accepted = append(accepted, acceptedUpdate{id: id, targetDate: targetDate, status: am.Status})
  }

  inputText := reason
  if strings.TrimSpace(inputText) == "" {
    inputText = "Manual plan adjustment requested"
  }
  logRow := &types.AIInteractionLog{
    ID:              uuid.New(),
    ProjectID:       projectID,
    InteractionType: types.InteractionPlanAdjustment,
    UserInput:       inputText,
    AIOutput:        adjustment.Summary,
  }

  err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    for _, u := range accepted {
      if _, txErr := ps.milestoneRepo.UpdateSchedule(ctx, tx, u.id, u.targetDate, u.status); txErr != nil {
        return txErr
      }
    }
    if _, txErr := ps.logRepo.Create(ctx, tx, []*types.AIInteractionLog{logRow}); txErr != nil {
      return txErr
    }
    return nil
  })
  if err != nil {
    return nil, fmt.Errorf("failed to apply plan adjustment: %w", err)
  }

  ps.log.Info("Adjusted plan",
    "project_id", projectID.String(),
    "applied", len(accepted),
    "skipped", len(skipped),
  )

  return &PlanAdjustmentResult{
    Summary:       adjustment.Summary,
    AdjustedCount: len(accepted),
    SkippedIDs:    skipped,
  }, nil
}

func buildAdjustMessage(project *types.Project, completed, remaining []*types.Milestone, reason string, now time.Time, weeks int) string {
  var sb strings.Builder
  fmt.Fprintf(&sb, "You are adjusting an existing dissertation project plan. The student is behind schedule and needs a realistic re-plan.\n\n")
  fmt.Fprintf(&sb, "PROJECT: %s (%s)\n", project.Title, project.Type)
  fmt.Fprintf(&sb, "DEADLINE: %s (%d weeks remaining)\n", project.Deadline.Format("02/01/2006"), weeks)
  fmt.Fprintf(&sb, "WEEKLY HOURS: %dh/week\n", project.WeeklyHoursAvailable)
  fmt.Fprintf(&sb, "TODAY: %s\n\n", now.Format("2006-01-02"))

  fmt.Fprintf(&sb, "COMPLETED MILESTONES:\n")
  if len(completed) == 0 {
    fmt.Fprintf(&sb, "None yet\n")
  }
  for _, m := range completed {
    fmt.Fprintf(&sb, "- %s (done)\n", m.Title)
  }

  fmt.Fprintf(&sb, "\nREMAINING MILESTONES (need new dates):\n")
  for _, m := range remaining {
    fmt.Fprintf(&sb, "- [%s] %s (was due: %s, est. %dh)\n",
      m.ID.String(), m.Title, m.TargetDate.Format("02/01/2006"), m.EstimatedHours)
  }

  if strings.TrimSpace(reason) != "" {
    fmt.Fprintf(&sb, "\nREASON FOR ADJUSTMENT: %s\n", reason)
  }

  fmt.Fprintf(&sb, "\nRedistribute the remaining milestones across the available %d weeks. ", weeks)
  fmt.Fprintf(&sb, "Keep the same milestone IDs and titles. Maintain phase order. ")
  fmt.Fprintf(&sb, "Keep at least 1 week buffer before the final deadline.")
  return sb.String()
}

func decodeAdjustment(raw map[string]any) (*planAdjustment, error) {
  b, err := json.Marshal(raw)
  if err != nil {
    return nil, err
  }
  var adjustment planAdjustment
  if err := json.Unmarshal(b, &adjustment); err != nil {
    return nil, fmt.Errorf("adjustment payload did not match schema: %w", err)
  }
  if adjustment.Summary == "" {
    return nil, fmt.Errorf("adjustment payload missing summary")
  }
  return &adjustment, nil
}
