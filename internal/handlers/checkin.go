package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/services"
)

type CheckinHandler struct {
  checkinService services.CheckinService
}

func NewCheckinHandler(checkinService services.CheckinService) *CheckinHandler {
  return &CheckinHandler{checkinService: checkinService}
}

func (ch *CheckinHandler) Submit(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }

  var req struct {
    ProjectID      string   `json:"projectId"`
    CompletedTasks []string `json:"completedTasks"`
    Blockers       string   `json:"blockers"`
    MoodRating     int      `json:"moodRating"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  projectID, err := uuid.Parse(req.ProjectID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
    return
  }

  result, err := ch.checkinService.Submit(c.Request.Context(), rd.UserID, services.CheckInInput{
    ProjectID:      projectID,
    CompletedTasks: req.CompletedTasks,
    Blockers:       req.Blockers,
    MoodRating:     req.MoodRating,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}
