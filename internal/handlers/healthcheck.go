package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
)

// HealthCheck reports liveness plus the beta flag so the frontend can read
// it without a separate config endpoint.
func HealthCheck(betaMode bool) gin.HandlerFunc {
  return func(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "ok", "beta": betaMode})
  }
}
