package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/types"
)

const (
  maxDocumentBytes = 4 << 20 // 4 MiB
  maxDocumentChars = 50000
)

const truncationNotice = "\n\n[Document truncated: only the first 50,000 characters were analysed]"

type DocumentService interface {
  // Analyse extracts text from an uploaded PDF/DOCX and runs the structured
  // document analysis. projectID may be uuid.Nil for a pre-onboarding
  // analysis that is returned to the caller without being persisted.
  Analyse(ctx context.Context, userID uuid.UUID, fileName, mimeType string, data []byte, projectID uuid.UUID) (map[string]any, error)
}

type documentService struct {
  db          *gorm.DB
  log         *logger.Logger
  ai          OpenAIClient
  projectRepo repos.ProjectRepo
  logRepo     repos.AIInteractionLogRepo
}

func NewDocumentService(
  db *gorm.DB,
  baseLog *logger.Logger,
  ai OpenAIClient,
  projectRepo repos.ProjectRepo,
  logRepo repos.AIInteractionLogRepo,
) DocumentService {
  return &documentService{
    db:          db,
    log:         baseLog.With("service", "DocumentService"),
    ai:          ai,
    projectRepo: projectRepo,
    logRepo:     logRepo,
  }
}

func (ds *documentService) Analyse(ctx context.Context, userID uuid.UUID, fileName, mimeType string, data []byte, projectID uuid.UUID) (map[string]any, error) {
  if !SupportedDocumentType(fileName, mimeType) {
    return nil, apierr.Extraction(fmt.Errorf("unsupported file type %q, upload a PDF or DOCX", fileName))
  }
  // Size is rejected before any parsing work happens.
  if len(data) > maxDocumentBytes {
    return nil, apierr.Extraction(fmt.Errorf("file too large (%d bytes), limit is 4 MB", len(data)))
  }

  text, err := ExtractText(fileName, mimeType, data)
  if err != nil {
    return nil, apierr.Extraction(fmt.Errorf("could not extract text: %w", err))
  }
  if len(text) < 50 {
    return nil, apierr.Extraction(fmt.Errorf("document contains almost no extractable text, it may be a scanned image; upload a text-based PDF or DOCX"))
  }

  truncated := false
  if len(text) > maxDocumentChars {
    text = text[:maxDocumentChars] + truncationNotice
    truncated = true
  }

  userMessage := fmt.Sprintf("Analyse the following academic document (%s):\n\n%s", fileName, text)

  raw, err := ds.ai.GenerateJSON(ctx, documentAnalysisSystemPrompt, userMessage, "document_analysis", documentAnalysisSchema())
  if err != nil {
    return nil, fmt.Errorf("document analysis failed: %w", err)
  }

  summary, _ := raw["rawSummary"].(string)
  if summary == "" {
    return nil, apierr.UpstreamFormat(fmt.Errorf("analysis payload missing rawSummary"))
  }
  if _, ok := raw["assessmentCriteria"].([]any); !ok {
    return nil, apierr.UpstreamFormat(fmt.Errorf("analysis payload missing assessmentCriteria array"))
  }

  if projectID != uuid.Nil {
    project, err := ds.projectRepo.GetOwned(ctx, nil, projectID, userID)
    if err != nil {
      return nil, err
    }
    if project == nil {
      return nil, apierr.NotFound(fmt.Errorf("project %s not found", projectID))
    }

    blob, mErr := json.Marshal(raw)
    if mErr != nil {
      return nil, mErr
    }
    logRow := &types.AIInteractionLog{
      ID:              uuid.New(),
      ProjectID:       projectID,
      InteractionType: types.InteractionDocumentAnalysis,
      UserInput:       fmt.Sprintf("Document uploaded: %s (%d bytes, truncated=%t)", fileName, len(data), truncated),
      AIOutput:        string(blob),
    }

    err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
      if txErr := ds.projectRepo.UpdateDocumentAnalysis(ctx, tx, projectID, datatypes.JSON(blob), fileName, time.Now().UTC()); txErr != nil {
        return txErr
      }
      if _, txErr := ds.logRepo.Create(ctx, tx, []*types.AIInteractionLog{logRow}); txErr != nil {
        return txErr
      }
      return nil
    })
    if err != nil {
      return nil, fmt.Errorf("failed to persist document analysis: %w", err)
    }
  }

  ds.log.Info("Analysed document",
    "file_name", fileName,
    "bytes", len(data),
    "truncated", truncated,
    "persisted", projectID != uuid.Nil,
  )

  return raw, nil
}
