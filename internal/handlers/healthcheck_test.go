package handlers

import (
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
)

func TestHealthCheckReportsBetaFlag(t *testing.T) {
  gin.SetMode(gin.TestMode)
  for _, beta := range []bool{true, false} {
    router := gin.New()
    router.GET("/healthcheck", HealthCheck(beta))

    w := httptest.NewRecorder()
    router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
    if w.Code != http.StatusOK {
      t.Fatalf("status = %d, want 200", w.Code)
    }

    var body struct {
      Status string `json:"status"`
      Beta   bool   `json:"beta"`
    }
    if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
      t.Fatalf("decode body: %v", err)
    }
    if body.Status != "ok" {
      t.Fatalf("status field = %q", body.Status)
    }
    if body.Beta != beta {
      t.Fatalf("beta = %v, want %v", body.Beta, beta)
    }
  }
}
