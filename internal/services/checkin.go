package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "time"
  "unicode/utf8"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/types"
)

type CheckInInput struct {
  ProjectID      uuid.UUID `json:"projectId"`
  CompletedTasks []string  `json:"completedTasks"`
  Blockers       string    `json:"blockers"`
  MoodRating     int       `json:"moodRating"`
}

type CheckInResult struct {
  CheckIn              *types.CheckIn `json:"check_in"`
  AIResponse           string         `json:"ai_response"`
  SuggestPlanAdjust    bool           `json:"suggest_plan_adjustment"`
  AdjustmentReason     string         `json:"adjustment_reason,omitempty"`
  WeekNumber           int            `json:"week_number"`
  MilestonesMarkedLate int            `json:"milestones_marked_late"`
}

type CheckinService interface {
  Submit(ctx context.Context, userID uuid.UUID, input CheckInInput) (*CheckInResult, error)
}

type checkinService struct {
  db            *gorm.DB
  log           *logger.Logger
  ai            OpenAIClient
  projectRepo   repos.ProjectRepo
  milestoneRepo repos.MilestoneRepo
  checkInRepo   repos.CheckInRepo
  logRepo       repos.AIInteractionLogRepo
}

func NewCheckinService(
  db *gorm.DB,
  baseLog *logger.Logger,
  ai OpenAIClient,
  projectRepo repos.ProjectRepo,
  milestoneRepo repos.MilestoneRepo,
  checkInRepo repos.CheckInRepo,
  logRepo repos.AIInteractionLogRepo,
) CheckinService {
  return &checkinService{
    db:            db,
    log:           baseLog.With("service", "CheckinService"),
    ai:            ai,
    projectRepo:   projectRepo,
    milestoneRepo: milestoneRepo,
    checkInRepo:   checkInRepo,
    logRepo:       logRepo,
  }
}

const adjustDirectivePrefix = "ADJUST_PLAN:"

// parseAdjustDirective scans the narrative from the END for the trailing
// ADJUST_PLAN line the model was asked to emit. Every directive line is
// stripped from the narrative regardless of position. An absent or
// unparsable directive means no suggestion; the narrative is kept as-is.
// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
  if len(s) <= max {
    return s
  }
  cut := max
  for cut > 0 && !utf8.RuneStart(s[cut]) {
    cut--
  }
  return s[:cut]
}

func parseAdjustDirective(raw string) (narrative string, suggest bool, reason string) {
  lines := strings.Split(strings.TrimSpace(raw), "\n")

  var directive string
  for i := len(lines) - 1; i >= 0; i-- {
    if strings.HasPrefix(strings.TrimSpace(lines[i]), adjustDirectivePrefix) {
      directive = strings.TrimSpace(lines[i])
      break
    }
  }

  kept := make([]string, 0, len(lines))
  for _, l := range lines {
    if strings.HasPrefix(strings.TrimSpace(l), adjustDirectivePrefix) {
      continue
    }
    kept = append(kept, l)
  }
  narrative = strings.TrimSpace(strings.Join(kept, "\n"))

  if directive == "" {
    return narrative, false, ""
  }
  rest := strings.TrimSpace(strings.TrimPrefix(directive, adjustDirectivePrefix))
  upper := strings.ToUpper(rest)
  switch {
  case strings.HasPrefix(upper, "YES"):
    reason = strings.TrimSpace(rest[len("YES"):])
    reason = strings.TrimSpace(strings.TrimPrefix(reason, "-"))
    return narrative, true, reason
  case strings.HasPrefix(upper, "NO"):
    return narrative, false, ""
  default:
    return narrative, false, ""
  }
}

func (cs *checkinService) Submit(ctx context.Context, userID uuid.UUID, input CheckInInput) (*CheckInResult, error) {
  if input.MoodRating < 1 || input.MoodRating > 5 {
    return nil, apierr.Validation(fmt.Errorf("moodRating must be between 1 and 5"))
  }

  project, err := cs.projectRepo.GetOwned(ctx, nil, input.ProjectID, userID)
  if err != nil {
    return nil, err
  }
  if project == nil {
    return nil, apierr.NotFound(fmt.Errorf("project %s not found", input.ProjectID))
  }

  milestones, err := cs.milestoneRepo.ListByProjectID(ctx, nil, input.ProjectID)
  if err != nil {
    return nil, err
  }
  recent, err := cs.checkInRepo.ListRecentByProjectID(ctx, nil, input.ProjectID, 2)
  if err != nil {
    return nil, err
  }

  now := time.Now().UTC()
  weeks := weeksRemaining(now, project.Deadline)

  weekNumber := 1
  if len(recent) > 0 {
    weekNumber = recent[0].WeekNumber + 1
  }

  var (
    completedCount int
    overdueCount   int
    overdueIDs     []uuid.UUID
    current        *types.Milestone
    upcoming       *types.Milestone
  )
  for _, m := range milestones {
    switch m.Status {
    case types.MilestoneCompleted:
      completedCount++
      continue
    case types.MilestoneAdjusted:
      continue
    }
    if m.TargetDate.Before(now) {
      overdueCount++
      overdueIDs = append(overdueIDs, m.ID)
    }
    if m.Status == types.MilestoneInProgress && current == nil {
      current = m
    }
    if m.Status == types.MilestoneUpcoming && upcoming == nil {
      upcoming = m
    }
  }

  var previousSummary string
  if len(recent) > 0 && recent[0].AIResponse != "" {
    previousSummary = truncateUTF8(recent[0].AIResponse, 200)
  }

  userMessage := buildCheckInMessage(project, input, weekNumber, weeks,
    len(milestones), completedCount, overdueCount, current, upcoming, previousSummary)

  rawResponse, err := cs.ai.Complete(ctx, checkInSystemPrompt, userMessage)
  if err != nil {
    return nil, fmt.Errorf("check-in response failed: %w", err)
  }

  narrative, suggest, reason := parseAdjustDirective(rawResponse)

  tasksJSON, _ := json.Marshal(input.CompletedTasks)
  checkIn := &types.CheckIn{
    ID:             uuid.New(),
    ProjectID:      input.ProjectID,
    WeekNumber:     weekNumber,
    Status:         types.CheckInCompleted,
    CompletedTasks: datatypes.JSON(tasksJSON),
    Blockers:       input.Blockers,
    MoodRating:     input.MoodRating,
    AIResponse:     narrative,
  }
  if suggest {
    adjJSON, _ := json.Marshal(map[string]any{
      "suggested": true,
      "reason":    reason,
    })
    checkIn.PlanAdjustments = datatypes.JSON(adjJSON)
  }

  inputJSON, _ := json.Marshal(input)
  logRow := &types.AIInteractionLog{
    ID:              uuid.New(),
    ProjectID:       input.ProjectID,
    InteractionType: types.InteractionCheckin,
    UserInput:       string(inputJSON),
    AIOutput:        rawResponse,
  }

  err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, txErr := cs.checkInRepo.Create(ctx, tx, []*types.CheckIn{checkIn}); txErr != nil {
      return txErr
    }
    if _, txErr := cs.logRepo.Create(ctx, tx, []*types.AIInteractionLog{logRow}); txErr != nil {
      return txErr
    }
    if txErr := cs.milestoneRepo.UpdateStatusByIDs(ctx, tx, overdueIDs, types.MilestoneOverdue); txErr != nil {
      return txErr
    }
    return nil
  })
  if err != nil {
    return nil, fmt.Errorf("failed to persist check-in: %w", err)
  }

  cs.log.Info("Check-in submitted",
    "project_id", input.ProjectID.String(),
    "week_number", weekNumber,
    "overdue_marked", len(overdueIDs),
    "suggest_adjustment", suggest,
  )

  return &CheckInResult{
    CheckIn:              checkIn,
    AIResponse:           narrative,
    SuggestPlanAdjust:    suggest,
    AdjustmentReason:     reason,
    WeekNumber:           weekNumber,
    MilestonesMarkedLate: len(overdueIDs),
  }, nil
}

func buildCheckInMessage(
  project *types.Project,
  input CheckInInput,
  weekNumber, weeks, totalMilestones, completedCount, overdueCount int,
  current, upcoming *types.Milestone,
  previousSummary string,
) string {
  progressPercent := 0
  if totalMilestones > 0 {
    progressPercent = int(float64(completedCount) / float64(totalMilestones) * 100)
  }

  currentTitle := "None in progress"
  if current != nil {
    currentTitle = current.Title
  }
  upcomingTitle := "None upcoming"
  if upcoming != nil {
    upcomingTitle = upcoming.Title
  }

  var sb strings.Builder
  fmt.Fprintf(&sb, "WEEKLY CHECK-IN: Week %d\n\n", weekNumber)
  fmt.Fprintf(&sb, "PROJECT: %s (%s)\n", project.Title, project.Type)
  fmt.Fprintf(&sb, "DEADLINE: %s (%d weeks away)\n", project.Deadline.Format("02/01/2006"), weeks)
  fmt.Fprintf(&sb, "OVERALL PROGRESS: %d/%d milestones complete (%d%%)\n", completedCount, totalMilestones, progressPercent)
  fmt.Fprintf(&sb, "OVERDUE MILESTONES: %d\n", overdueCount)
  fmt.Fprintf(&sb, "CURRENT MILESTONE: %s\n", currentTitle)
  fmt.Fprintf(&sb, "NEXT MILESTONE: %s\n\n", upcomingTitle)

  fmt.Fprintf(&sb, "THIS WEEK'S CHECK-IN:\n")
  fmt.Fprintf(&sb, "Mood rating: %d/5 (1=struggling, 5=great)\n", input.MoodRating)
  fmt.Fprintf(&sb, "What they got done:\n")
  if len(input.CompletedTasks) == 0 {
    fmt.Fprintf(&sb, "- Nothing completed this week\n")
  }
  for _, t := range input.CompletedTasks {
    fmt.Fprintf(&sb, "- %s\n", t)
  }

  fmt.Fprintf(&sb, "\nBlockers / issues:\n")
  if strings.TrimSpace(input.Blockers) == "" {
    fmt.Fprintf(&sb, "None mentioned\n")
  } else {
    fmt.Fprintf(&sb, "%s\n", input.Blockers)
  }

  if previousSummary != "" {
    fmt.Fprintf(&sb, "\nLAST WEEK'S SUMMARY: %s\n", previousSummary)
  }

  fmt.Fprintf(&sb, "\nPlease give a check-in response now. Respond in plain text only. ")
  fmt.Fprintf(&sb, "No markdown, no bullet lists, just natural paragraphs. 150-250 words maximum.\n\n")
  fmt.Fprintf(&sb, "Also include on the very last line (separated by a blank line) either:\n")
  fmt.Fprintf(&sb, "ADJUST_PLAN: YES - [one sentence reason]\n")
  fmt.Fprintf(&sb, "ADJUST_PLAN: NO")
  return sb.String()
}
