package services

import (
  "encoding/json"
  "fmt"
  "time"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/types"
)

// Human-readable label maps used in the student-facing transparency export.

var typeLabels = map[string]string{
  types.InteractionPlanGeneration:   "Plan Generation",
  types.InteractionCheckin:          "Weekly Check-In",
  types.InteractionPlanAdjustment:   "Plan Adjustment",
  types.InteractionDocumentAnalysis: "Document Analysis",
}

var progressLabels = map[string]string{
  types.ProgressNotStarted:     "Not started yet",
  types.ProgressChosenTopic:    "Topic chosen",
  types.ProgressStartedReading: "Started reading / research",
  types.ProgressHaveProposal:   "Have a proposal",
  types.ProgressCollectingData: "Currently collecting data",
}

var methodologyLabels = map[string]string{
  types.MethodologyQualitative:     "Qualitative",
  types.MethodologyQuantitative:    "Quantitative",
  types.MethodologyMixed:           "Mixed methods",
  types.MethodologyLiteratureBased: "Literature-based",
  types.MethodologyNotSure:         "Not sure yet",
}

var projectTypeLabels = map[string]string{
  types.ProjectTypeDissertation:  "Dissertation",
  types.ProjectTypeAssignment:    "Assignment",
  types.ProjectTypeProject:       "Project",
  types.ProjectTypeExtendedEssay: "Extended Essay",
}

var moodLabels = map[int]string{
  1: "Struggling (1/5)",
  2: "Difficult (2/5)",
  3: "OK (3/5)",
  4: "Good (4/5)",
  5: "Great (5/5)",
}

var phaseLabels = map[string]string{
  types.PhaseLitReview:      "Literature Review",
  types.PhaseMethodology:    "Methodology",
  types.PhaseDataCollection: "Data Collection",
  types.PhaseAnalysis:       "Analysis",
  types.PhaseDrafting:       "Drafting",
  types.PhaseEditing:        "Editing",
  types.PhaseSubmission:     "Submission",
}

const kindParseError = "parse_error"

type TransparencyInteraction struct {
  ID              string         `json:"id"`
  Type            string         `json:"type"`
  TypeLabel       string         `json:"typeLabel"`
  Timestamp       string         `json:"timestamp"`
  ISOTimestamp    string         `json:"isoTimestamp"`
  StudentProvided map[string]any `json:"studentProvided"`
  AIProvided      map[string]any `json:"aiProvided"`
}

type TransparencyProject struct {
  Title       string `json:"title"`
  Type        string `json:"type"`
  WordCount   int    `json:"wordCount"`
  Deadline    string `json:"deadline"`
  Methodology string `json:"methodology,omitempty"`
  CreatedAt   string `json:"createdAt"`
}

type TransparencyExport struct {
  ExportedAt   string                    `json:"exportedAt"`
  Project      TransparencyProject       `json:"project"`
  Summary      TransparencySummary       `json:"summary"`
  Interactions []TransparencyInteraction `json:"interactions"`
}

type TransparencySummary struct {
  TotalInteractions int            `json:"totalInteractions"`
  ByType            map[string]int `json:"byType"`
}

// TransparencyService formats stored AI interaction logs for the student.
// It is total: every input produces a result, malformed stored JSON degrades
// to a parse_error variant rather than failing the export.
type TransparencyService interface {
  FormatInteraction(log *types.AIInteractionLog) TransparencyInteraction
  BuildExport(project *types.Project, logs []*types.AIInteractionLog) *TransparencyExport
}

type transparencyService struct {
  log *logger.Logger
}

func NewTransparencyService(baseLog *logger.Logger) TransparencyService {
  return &transparencyService{log: baseLog.With("service", "TransparencyService")}
}

// formatDate renders "21 February 2026" (en-GB order).
func formatDate(t time.Time) string {
  return t.Format("2 January 2006")
}

// formatDateTime renders "21 February 2026 at 14:32".
func formatDateTime(t time.Time) string {
  return t.Format("2 January 2006") + " at " + t.Format("15:04")
}

func labelOr(m map[string]string, key, fallback string) string {
  if v, ok := m[key]; ok {
    return v
  }
  if key != "" {
    return key
  }
  return fallback
}

func safeParseObject(raw string) map[string]any {
  if raw == "" {
    return nil
  }
  var obj map[string]any
  if err := json.Unmarshal([]byte(raw), &obj); err != nil {
    return nil
  }
  return obj
}

func parseError(raw string) map[string]any {
  return map[string]any{"kind": kindParseError, "raw": raw}
}

func asString(v any) string {
  s, _ := v.(string)
  return s
}

func asNumber(v any) float64 {
  n, _ := v.(float64)
  return n
}

func asStringSlice(v any) []string {
  items, ok := v.([]any)
  if !ok {
    return []string{}
  }
  out := make([]string, 0, len(items))
  for _, it := range items {
    if s, ok := it.(string); ok && s != "" {
      out = append(out, s)
    }
  }
  return out
}

func formatDateString(raw string) string {
  if raw == "" {
    return "Unknown"
  }
  if t, err := time.Parse("2006-01-02", raw); err == nil {
    return formatDate(t)
  }
  if t, err := time.Parse(time.RFC3339, raw); err == nil {
    return formatDate(t)
  }
  return raw
}

func parsePlanGenerationInput(raw string) map[string]any {
  d := safeParseObject(raw)
  if d == nil {
    return parseError(raw)
  }
  title := asString(d["title"])
  if title == "" {
    title = "Untitled"
  }
  return map[string]any{
    "kind":            "plan_generation_input",
    "projectType":     labelOr(projectTypeLabels, asString(d["projectType"]), "Unknown"),
    "title":           title,
    "wordCount":       int(asNumber(d["wordCount"])),
    "deadline":        formatDateString(asString(d["deadline"])),
    "methodology":     labelOr(methodologyLabels, asString(d["methodology"]), "Unknown"),
    "currentProgress": labelOr(progressLabels, asString(d["currentProgress"]), "Unknown"),
    "weeklyHours":     int(asNumber(d["weeklyHoursAvailable"])),
    "blockedWeeks":    asStringSlice(d["blockedWeeks"]),
  }
}

func parsePlanGenerationOutput(raw string) map[string]any {
  d := safeParseObject(raw)
  if d == nil {
    return parseError(raw)
  }
  var milestones []map[string]any
  if items, ok := d["milestones"].([]any); ok {
    for _, it := range items {
      m, ok := it.(map[string]any)
      if !ok {
        continue
      }
      milestones = append(milestones, map[string]any{
        "title":          asString(m["title"]),
        "phase":          labelOr(phaseLabels, asString(m["phase"]), ""),
        "targetDate":     formatDateString(asString(m["targetDate"])),
        "estimatedHours": asNumber(m["estimatedHours"]),
      })
    }
  }
  return map[string]any{
    "kind":                "plan_generation_output",
    "summary":             asString(d["summary"]),
    "milestoneCount":      len(milestones),
    "weeksAvailable":      int(asNumber(d["weeksAvailable"])),
    "totalEstimatedHours": asNumber(d["totalEstimatedHours"]),
    "bufferWeeks":         int(asNumber(d["bufferWeeks"])),
    "milestones":          milestones,
  }
}

func parseCheckinInput(raw string) map[string]any {
  d := safeParseObject(raw)
  if d == nil {
    return parseError(raw)
  }
  mood := int(asNumber(d["moodRating"]))
  moodLabel, ok := moodLabels[mood]
  if !ok {
    moodLabel = fmt.Sprintf("%d/5", mood)
  }
  return map[string]any{
    "kind":           "checkin_input",
    "completedTasks": asStringSlice(d["completedTasks"]),
    "blockers":       asString(d["blockers"]),
    "moodRating":     mood,
    "moodLabel":      moodLabel,
  }
}

func (ts *transparencyService) FormatInteraction(log *types.AIInteractionLog) TransparencyInteraction {
  out := TransparencyInteraction{
    ID:           log.ID.String(),
    Type:         log.InteractionType,
    TypeLabel:    labelOr(typeLabels, log.InteractionType, "Unknown"),
    Timestamp:    formatDateTime(log.CreatedAt),
    ISOTimestamp: log.CreatedAt.UTC().Format(time.RFC3339),
  }

  switch log.InteractionType {
  case types.InteractionPlanGeneration:
    out.StudentProvided = parsePlanGenerationInput(log.UserInput)
    out.AIProvided = parsePlanGenerationOutput(log.AIOutput)

  case types.InteractionCheckin:
    out.StudentProvided = parseCheckinInput(log.UserInput)
    out.AIProvided = map[string]any{
      "kind":     "checkin_output",
      "response": log.AIOutput,
    }

  case types.InteractionPlanAdjustment:
    reason := log.UserInput
    if reason == "" {
      reason = "Adjustment requested"
    }
    out.StudentProvided = map[string]any{
      "kind":   "plan_adjustment_input",
      "reason": reason,
    }
    out.AIProvided = map[string]any{
      "kind":    "plan_adjustment_output",
      "summary": log.AIOutput,
    }

  case types.InteractionDocumentAnalysis:
    fileName := log.UserInput
    if fileName == "" {
      fileName = "Unknown file"
    }
    out.StudentProvided = map[string]any{
      "kind":     "document_analysis_input",
      "fileName": fileName,
    }
    summary := log.AIOutput
    if d := safeParseObject(log.AIOutput); d != nil {
      if s := asString(d["rawSummary"]); s != "" {
        summary = s
      }
    }
    out.AIProvided = map[string]any{
      "kind":    "document_analysis_output",
      "summary": summary,
    }

  default:
    out.StudentProvided = parseError(log.UserInput)
    out.AIProvided = parseError(log.AIOutput)
  }

  return out
}

func (ts *transparencyService) BuildExport(project *types.Project, logs []*types.AIInteractionLog) *TransparencyExport {
  interactions := make([]TransparencyInteraction, 0, len(logs))
  byType := map[string]int{
    types.InteractionPlanGeneration:   0,
    types.InteractionCheckin:          0,
    types.InteractionPlanAdjustment:   0,
    types.InteractionDocumentAnalysis: 0,
  }
  for _, l := range logs {
    interactions = append(interactions, ts.FormatInteraction(l))
    if _, known := byType[l.InteractionType]; known {
      byType[l.InteractionType]++
    }
  }

  exported := &TransparencyExport{
    ExportedAt: time.Now().UTC().Format(time.RFC3339),
    Project: TransparencyProject{
      Title:       project.Title,
      Type:        labelOr(projectTypeLabels, project.Type, "Unknown"),
      WordCount:   project.WordCount,
      Deadline:    formatDate(project.Deadline),
      Methodology: labelOr(methodologyLabels, project.Methodology, ""),
      CreatedAt:   formatDate(project.CreatedAt),
    },
    Summary: TransparencySummary{
      TotalInteractions: len(interactions),
      ByType:            byType,
    },
    Interactions: interactions,
  }
  return exported
}
