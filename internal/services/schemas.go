package services

// JSON schemas for structured model output. Strict mode requires every
// property listed in "required" and additionalProperties disabled, so
// optional values are expressed as nullable types instead.

func planSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "milestones": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "title":       map[string]any{"type": "string", "description": "Concise milestone name"},
            "description": map[string]any{"type": "string", "description": "1-2 sentences on what this milestone involves and what 'done' looks like"},
            "phase": map[string]any{
              "type": "string",
              "enum": []string{"lit_review", "methodology", "data_collection", "analysis", "drafting", "editing", "submission"},
            },
            "targetDate":     map[string]any{"type": "string", "description": "YYYY-MM-DD"},
            "estimatedHours": map[string]any{"type": "number"},
            "deliverable":    map[string]any{"type": "string", "description": "The specific output that marks this milestone complete"},
            "order":          map[string]any{"type": "integer", "description": "1-indexed position"},
          },
          "required":             []string{"title", "description", "phase", "targetDate", "estimatedHours", "deliverable", "order"},
          "additionalProperties": false,
        },
      },
      "summary":             map[string]any{"type": "string", "description": "2-3 sentences giving an honest overview of the plan, noting any tight spots or risks"},
      "weeksAvailable":      map[string]any{"type": "integer"},
      "totalEstimatedHours": map[string]any{"type": "number"},
      "bufferWeeks":         map[string]any{"type": "integer"},
    },
    "required":             []string{"milestones", "summary", "weeksAvailable", "totalEstimatedHours", "bufferWeeks"},
    "additionalProperties": false,
  }
}

func planAdjustmentSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "adjustedMilestones": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "id":         map[string]any{"type": "string", "description": "Existing milestone id"},
            "targetDate": map[string]any{"type": "string", "description": "YYYY-MM-DD"},
            "status": map[string]any{
              "type": "string",
              "enum": []string{"upcoming", "in_progress"},
            },
            "note": map[string]any{
              "type":        []string{"string", "null"},
              "description": "Optional 1-sentence note about this change",
            },
          },
          "required":             []string{"id", "targetDate", "status", "note"},
          "additionalProperties": false,
        },
      },
      "summary": map[string]any{"type": "string", "description": "2-3 sentences explaining what changed and what the student needs to do now"},
    },
    "required":             []string{"adjustedMilestones", "summary"},
    "additionalProperties": false,
  }
}

func documentAnalysisSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "rawSummary": map[string]any{"type": "string", "description": "2-3 sentence summary of what this document is and what it covers"},
      "assessmentCriteria": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "name":          map[string]any{"type": "string"},
            "description":   map[string]any{"type": "string"},
            "weightPercent": map[string]any{"type": []string{"number", "null"}},
          },
          "required":             []string{"name", "description", "weightPercent"},
          "additionalProperties": false,
        },
      },
      "markingWeights": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "component": map[string]any{"type": "string"},
            "percent":   map[string]any{"type": "number"},
          },
          "required":             []string{"component", "percent"},
          "additionalProperties": false,
        },
      },
      "requiredDeliverables":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
      "methodologyConstraints":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
      "ethicsRequirements":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
      "keyRequirements":               map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
      "supervisorMeetingExpectations": map[string]any{"type": []string{"string", "null"}},
      "extractedWordCount":            map[string]any{"type": []string{"integer", "null"}},
      "extractedDeadline":             map[string]any{"type": []string{"string", "null"}, "description": "YYYY-MM-DD"},
    },
    "required": []string{
      "rawSummary", "assessmentCriteria", "markingWeights", "requiredDeliverables",
      "methodologyConstraints", "ethicsRequirements", "keyRequirements",
      "supervisorMeetingExpectations", "extractedWordCount", "extractedDeadline",
    },
    "additionalProperties": false,
  }
}
