package services

import (
  "reflect"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/testutil"
  "github.com/shipmydiss/backend/internal/types"
)

func TestFormatInteractionPlanGeneration(t *testing.T) {
  svc := NewTransparencyService(testutil.Logger(t))

  input := `{"title":"Remote work","projectType":"dissertation","wordCount":10000,` +
    `"deadline":"2026-05-15","methodology":"qualitative","currentProgress":"chosen_topic",` +
    `"weeklyHoursAvailable":10,"blockedWeeks":["2026-04-06"]}`
  output := `{"summary":"Backward-planned schedule.","weeksAvailable":10,"totalEstimatedHours":96,` +
    `"bufferWeeks":1,"milestones":[{"title":"Literature search","phase":"lit_review",` +
    `"targetDate":"2026-03-10","estimatedHours":12}]}`

  row := &types.AIInteractionLog{
    ID:              uuid.New(),
    InteractionType: types.InteractionPlanGeneration,
    UserInput:       input,
    AIOutput:        output,
    CreatedAt:       time.Date(2026, 2, 21, 14, 32, 0, 0, time.UTC),
  }

  got := svc.FormatInteraction(row)
  if got.TypeLabel != "Plan Generation" {
    t.Fatalf("type label = %q", got.TypeLabel)
  }
  if got.Timestamp != "21 February 2026 at 14:32" {
    t.Fatalf("timestamp = %q", got.Timestamp)
  }

  student := got.StudentProvided
  if student["kind"] != "plan_generation_input" {
    t.Fatalf("student kind = %v", student["kind"])
  }
  if student["projectType"] != "Dissertation" {
    t.Fatalf("project type label = %v", student["projectType"])
  }
  if student["deadline"] != "15 May 2026" {
    t.Fatalf("deadline = %v", student["deadline"])
  }
  if student["methodology"] != "Qualitative" {
    t.Fatalf("methodology = %v", student["methodology"])
  }

  ai := got.AIProvided
  if ai["kind"] != "plan_generation_output" {
    t.Fatalf("ai kind = %v", ai["kind"])
  }
  if ai["milestoneCount"] != 1 {
    t.Fatalf("milestone count = %v", ai["milestoneCount"])
  }
  milestones := ai["milestones"].([]map[string]any)
  if milestones[0]["phase"] != "Literature Review" {
    t.Fatalf("phase label = %v", milestones[0]["phase"])
  }
  if milestones[0]["targetDate"] != "10 March 2026" {
    t.Fatalf("target date = %v", milestones[0]["targetDate"])
  }
}

func TestFormatInteractionCheckinMoodLabel(t *testing.T) {
  svc := NewTransparencyService(testutil.Logger(t))

  row := &types.AIInteractionLog{
    ID:              uuid.New(),
    InteractionType: types.InteractionCheckin,
    UserInput:       `{"completedTasks":["Read papers"],"blockers":"","moodRating":2}`,
    AIOutput:        "Keep going, next week will be easier.",
    CreatedAt:       time.Now().UTC(),
  }

  got := svc.FormatInteraction(row)
  if got.StudentProvided["moodLabel"] != "Difficult (2/5)" {
    t.Fatalf("mood label = %v", got.StudentProvided["moodLabel"])
  }
  if got.AIProvided["response"] != row.AIOutput {
    t.Fatalf("response = %v", got.AIProvided["response"])
  }
}

func TestFormatInteractionDegradesToParseError(t *testing.T) {
  svc := NewTransparencyService(testutil.Logger(t))

  // Malformed stored JSON must never fail the export.
  row := &types.AIInteractionLog{
    ID:              uuid.New(),
    InteractionType: types.InteractionPlanGeneration,
    UserInput:       "{not json at all",
    AIOutput:        "also broken}",
    CreatedAt:       time.Now().UTC(),
  }
  got := svc.FormatInteraction(row)
  if got.StudentProvided["kind"] != kindParseError {
    t.Fatalf("student kind = %v, want parse_error", got.StudentProvided["kind"])
  }
  if got.StudentProvided["raw"] != "{not json at all" {
    t.Fatalf("raw payload not preserved: %v", got.StudentProvided["raw"])
  }
  if got.AIProvided["kind"] != kindParseError {
    t.Fatalf("ai kind = %v, want parse_error", got.AIProvided["kind"])
  }

  // Unknown interaction types degrade the same way.
  row.InteractionType = "mystery"
  got = svc.FormatInteraction(row)
  if got.StudentProvided["kind"] != kindParseError || got.AIProvided["kind"] != kindParseError {
    t.Fatalf("unknown type did not degrade to parse_error")
  }
}

func TestFormatInteractionIsIdempotent(t *testing.T) {
  svc := NewTransparencyService(testutil.Logger(t))

  rows := []*types.AIInteractionLog{
    {
      ID:              uuid.New(),
      InteractionType: types.InteractionPlanGeneration,
      UserInput: `{"title":"Remote work","projectType":"dissertation","wordCount":10000,` +
        `"deadline":"2026-05-15","methodology":"qualitative","currentProgress":"chosen_topic","weeklyHoursAvailable":10}`,
      AIOutput:  `{"summary":"Plan.","milestones":[{"title":"Search","phase":"lit_review","targetDate":"2026-03-10","estimatedHours":12}]}`,
      CreatedAt: time.Date(2026, 2, 21, 14, 32, 0, 0, time.UTC),
    },
    {
      ID:              uuid.New(),
      InteractionType: types.InteractionCheckin,
      UserInput:       `{"completedTasks":["Read papers"],"blockers":"","moodRating":4}`,
      AIOutput:        "Good week.",
      CreatedAt:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
    },
    {
      ID:              uuid.New(),
      InteractionType: types.InteractionPlanGeneration,
      UserInput:       "{not json at all",
      AIOutput:        "also broken}",
      CreatedAt:       time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
    },
  }

  // Formatting reads nothing but the row, so a second pass over the same
  // rows must produce identical output.
  for _, row := range rows {
    first := svc.FormatInteraction(row)
    second := svc.FormatInteraction(row)
    if !reflect.DeepEqual(first, second) {
      t.Fatalf("%s: repeated formatting diverged:\n%#v\n%#v", row.InteractionType, first, second)
    }
  }
}

func TestBuildExportCountsByType(t *testing.T) {
  svc := NewTransparencyService(testutil.Logger(t))

  project := &types.Project{
    Title:     "Remote work",
    Type:      types.ProjectTypeDissertation,
    WordCount: 10000,
    Deadline:  time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
    CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
  }
  logs := []*types.AIInteractionLog{
    {ID: uuid.New(), InteractionType: types.InteractionPlanGeneration, UserInput: "{}", AIOutput: "{}"},
    {ID: uuid.New(), InteractionType: types.InteractionCheckin, UserInput: "{}", AIOutput: "ok"},
    {ID: uuid.New(), InteractionType: types.InteractionCheckin, UserInput: "{}", AIOutput: "ok"},
  }

  export := svc.BuildExport(project, logs)
  if export.Summary.TotalInteractions != 3 {
    t.Fatalf("total = %d, want 3", export.Summary.TotalInteractions)
  }
  if export.Summary.ByType[types.InteractionCheckin] != 2 {
    t.Fatalf("checkin count = %d, want 2", export.Summary.ByType[types.InteractionCheckin])
  }
  // Zero-valued types still appear in the summary.
  if _, ok := export.Summary.ByType[types.InteractionDocumentAnalysis]; !ok {
    t.Fatalf("document_analysis missing from byType")
  }
  if export.Project.Deadline != "15 May 2026" {
    t.Fatalf("deadline = %q", export.Project.Deadline)
  }
  if export.Project.Type != "Dissertation" {
    t.Fatalf("type = %q", export.Project.Type)
  }
  if len(export.Interactions) != 3 {
    t.Fatalf("interactions = %d, want 3", len(export.Interactions))
  }
}
