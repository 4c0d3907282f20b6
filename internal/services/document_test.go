package services

import (
  "context"
  "errors"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/testutil"
  "github.com/shipmydiss/backend/internal/types"
)

func analysisPayload() map[string]any {
  return map[string]any{
    "rawSummary":         "An assessment brief asking for a 10,000 word qualitative study.",
    "assessmentCriteria": []any{"Critical analysis", "Methodological rigour"},
    "wordCount":          float64(10000),
    "documentType":       "assessment_brief",
  }
}

func newDocumentService(t *testing.T, ai *fakeAI) (DocumentService, *gorm.DB) {
  t.Helper()
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  svc := NewDocumentService(db, log, ai, r.project, r.log)
  return svc, db
}

func TestAnalyseRejectsUnsupportedType(t *testing.T) {
  ai := &fakeAI{generateJSON: func(system, user, schemaName string) (map[string]any, error) {
    t.Fatalf("model must not be called for unsupported types")
    return nil, nil
  }}
  svc, _ := newDocumentService(t, ai)

  _, err := svc.Analyse(context.Background(), uuid.New(), "notes.txt", "text/plain", []byte("hello"), uuid.Nil)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeExtraction {
    t.Fatalf("got %v, want extraction_error", err)
  }
}

func TestAnalyseRejectsOversizedBeforeExtraction(t *testing.T) {
  ai := &fakeAI{generateJSON: func(system, user, schemaName string) (map[string]any, error) {
    t.Fatalf("model must not be called for oversized uploads")
    return nil, nil
  }}
  svc, _ := newDocumentService(t, ai)

  // Garbage bytes prove the size check fires before any parsing.
  data := make([]byte, maxDocumentBytes+1)
  _, err := svc.Analyse(context.Background(), uuid.New(), "big.pdf", "application/pdf", data, uuid.Nil)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeExtraction {
    t.Fatalf("got %v, want extraction_error", err)
  }
  if !strings.Contains(err.Error(), "too large") {
    t.Fatalf("error should mention size: %v", err)
  }
}

func TestAnalyseRejectsScannedDocuments(t *testing.T) {
  svc, _ := newDocumentService(t, &fakeAI{})

  // Under 50 extractable characters reads like a scanned image.
  data := makeDOCX(t, "tiny")
  _, err := svc.Analyse(context.Background(), uuid.New(), "scan.docx", docxMIME, data, uuid.Nil)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeExtraction {
    t.Fatalf("got %v, want extraction_error", err)
  }
  if !strings.Contains(err.Error(), "scanned") {
    t.Fatalf("error should mention scanned documents: %v", err)
  }
}

func TestAnalyseTruncatesLongDocuments(t *testing.T) {
  ai := &fakeAI{generateJSON: func(system, user, schemaName string) (map[string]any, error) {
    return analysisPayload(), nil
  }}
  svc, _ := newDocumentService(t, ai)

  long := strings.Repeat("methodology and analysis chapters ", 2000)
  data := makeDOCX(t, long)
  result, err := svc.Analyse(context.Background(), uuid.New(), "long.docx", docxMIME, data, uuid.Nil)
  if err != nil {
    t.Fatalf("analyse: %v", err)
  }
  if result["rawSummary"] == "" {
    t.Fatalf("missing rawSummary")
  }
  if !strings.Contains(ai.lastUserMessage(), "[Document truncated") {
    t.Fatalf("prompt missing truncation notice")
  }
}

func TestAnalyseRejectsMalformedModelPayload(t *testing.T) {
  ai := &fakeAI{generateJSON: func(system, user, schemaName string) (map[string]any, error) {
    return map[string]any{"rawSummary": "has summary but no criteria"}, nil
  }}
  svc, _ := newDocumentService(t, ai)

  data := makeDOCX(t, strings.Repeat("assessment criteria and requirements ", 5))
  _, err := svc.Analyse(context.Background(), uuid.New(), "brief.docx", docxMIME, data, uuid.Nil)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeUpstreamFormat {
    t.Fatalf("got %v, want upstream_format_error", err)
  }
}

func TestAnalysePersistsForOwnedProject(t *testing.T) {
  ai := &fakeAI{generateJSON: func(system, user, schemaName string) (map[string]any, error) {
    return analysisPayload(), nil
  }}
  svc, db := newDocumentService(t, ai)

  user := testutil.SeedUser(t, db, "student@example.com")
  project := testutil.SeedProject(t, db, user.ID, time.Now().UTC().AddDate(0, 0, 60))

  data := makeDOCX(t, strings.Repeat("assessment criteria and requirements ", 5))
  if _, err := svc.Analyse(context.Background(), user.ID, "brief.docx", docxMIME, data, project.ID); err != nil {
    t.Fatalf("analyse: %v", err)
  }

  var reloaded types.Project
  if err := db.First(&reloaded, "id = ?", project.ID).Error; err != nil {
    t.Fatalf("reload project: %v", err)
  }
  if len(reloaded.DocumentAnalysis) == 0 {
    t.Fatalf("document analysis not stored")
  }
  if reloaded.DocumentFileName != "brief.docx" {
    t.Fatalf("file name = %q", reloaded.DocumentFileName)
  }
  if reloaded.DocumentAnalysedAt == nil {
    t.Fatalf("analysed timestamp not stored")
  }

  var logCount int64
  db.Model(&types.AIInteractionLog{}).
    Where("project_id = ? AND interaction_type = ?", project.ID, types.InteractionDocumentAnalysis).
    Count(&logCount)
  if logCount != 1 {
    t.Fatalf("interaction log rows = %d, want 1", logCount)
  }
}

func TestAnalyseHidesForeignProject(t *testing.T) {
  ai := &fakeAI{generateJSON: func(system, user, schemaName string) (map[string]any, error) {
    return analysisPayload(), nil
  }}
  svc, db := newDocumentService(t, ai)

  owner := testutil.SeedUser(t, db, "owner@example.com")
  other := testutil.SeedUser(t, db, "other@example.com")
  project := testutil.SeedProject(t, db, owner.ID, time.Now().UTC().AddDate(0, 0, 60))

  data := makeDOCX(t, strings.Repeat("assessment criteria and requirements ", 5))
  _, err := svc.Analyse(context.Background(), other.ID, "brief.docx", docxMIME, data, project.ID)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeNotFound {
    t.Fatalf("got %v, want not_found", err)
  }
}
