package handlers

import (
  "crypto/subtle"
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"

  "github.com/shipmydiss/backend/internal/services"
)

type JobsHandler struct {
  reminderService services.ReminderService
  cronSecret      string
}

func NewJobsHandler(reminderService services.ReminderService, cronSecret string) *JobsHandler {
  return &JobsHandler{
    reminderService: reminderService,
    cronSecret:      cronSecret,
  }
}

// ReminderSweep is triggered by the external scheduler, authenticated by a
// shared bearer secret rather than a user session.
func (jh *JobsHandler) ReminderSweep(c *gin.Context) {
  if jh.cronSecret == "" {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "cron jobs disabled"})
    return
  }
  authHeader := c.GetHeader("Authorization")
  var provided string
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    provided = authHeader[7:]
  }
  if subtle.ConstantTimeCompare([]byte(provided), []byte(jh.cronSecret)) != 1 {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }

  result, err := jh.reminderService.RunSweep(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}
