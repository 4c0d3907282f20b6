package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/services"
)

type PlanHandler struct {
  planService services.PlanService
}

func NewPlanHandler(planService services.PlanService) *PlanHandler {
  return &PlanHandler{planService: planService}
}

func (ph *PlanHandler) Generate(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }

  var input services.OnboardingInput
  if err := c.ShouldBindJSON(&input); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }

  result, err := ph.planService.Generate(c.Request.Context(), rd.UserID, input)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}

func (ph *PlanHandler) Adjust(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
    return
  }

  var req struct {
    ProjectID string `json:"projectId"`
    Reason    string `json:"reason"`
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

  result, err := ph.planService.Adjust(c.Request.Context(), rd.UserID, projectID, req.Reason)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}
