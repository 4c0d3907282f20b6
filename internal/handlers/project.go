package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/services"
)

type ProjectHandler struct {
  projectService   services.ProjectService
  milestoneService services.MilestoneService
  userService      services.UserService
}

func NewProjectHandler(
  projectService services.ProjectService,
  milestoneService services.MilestoneService,
  userService services.UserService,
) *ProjectHandler {
  return &ProjectHandler{
    projectService:   projectService,
    milestoneService: milestoneService,
    userService:      userService,
  }
}

func (ph *ProjectHandler) GetMe(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }
  user, err := ph.userService.GetMe(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"user": user})
}

func (ph *ProjectHandler) ListProjects(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }
  views, err := ph.projectService.ListProjects(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"projects": views})
}

func (ph *ProjectHandler) GetCurrent(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }
  view, err := ph.projectService.GetCurrent(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondError(c, err)
    return
  }
  if view == nil {
    RespondOK(c, gin.H{"project": nil})
    return
  }
  RespondOK(c, view)
}

func (ph *ProjectHandler) UpdateMilestone(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }
  milestoneID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
    return
  }
  var req struct {
    Status string `json:"status"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  milestone, err := ph.milestoneService.UpdateStatus(c.Request.Context(), rd.UserID, milestoneID, req.Status)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"milestone": milestone})
}

func (ph *ProjectHandler) ExportTransparency(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }
  projectID := uuid.Nil
  if raw := c.Query("projectId"); raw != "" {
    parsed, parseErr := uuid.Parse(raw)
    if parseErr != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
      return
    }
    projectID = parsed
  }
  export, err := ph.projectService.ExportTransparency(c.Request.Context(), rd.UserID, projectID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, export)
}
