package handlers

import (
  "io"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/services"
)

// Multipart reads stop just past the service's 4 MiB limit so an oversized
// upload is rejected by size, not by a truncated parse.
const maxUploadReadBytes = (4 << 20) + 1

type DocumentHandler struct {
  documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService) *DocumentHandler {
  return &DocumentHandler{documentService: documentService}
}

func (dh *DocumentHandler) Analyse(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }

  fileHeader, err := c.FormFile("file")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
    return
  }

  projectID := uuid.Nil
  if raw := c.PostForm("projectId"); raw != "" {
    parsed, parseErr := uuid.Parse(raw)
    if parseErr != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
      return
    }
    projectID = parsed
  }

  f, err := fileHeader.Open()
  if err != nil {
    RespondError(c, err)
    return
  }
  defer f.Close()
  data, err := io.ReadAll(io.LimitReader(f, maxUploadReadBytes))
  if err != nil {
    RespondError(c, err)
    return
  }

  analysis, err := dh.documentService.Analyse(
    c.Request.Context(),
    rd.UserID,
    fileHeader.Filename,
    fileHeader.Header.Get("Content-Type"),
    data,
    projectID,
  )
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"analysis": analysis})
}
