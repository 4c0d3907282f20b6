package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/services"
)

const (
  SessionCookieName = "session_token"
  AdminCookieName   = "admin_token"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(baseLog *logger.Logger, authService services.AuthService) *AuthMiddleware {
  return &AuthMiddleware{
    log:         baseLog.With("middleware", "AuthMiddleware"),
    authService: authService,
  }
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c, SessionCookieName)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c, AdminCookieName)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin authentication required"})
      return
    }
    if err := am.authService.VerifyAdminToken(tokenString); err != nil {
      am.log.Warn("Admin token rejected", "error", err.Error())
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin authentication required"})
      return
    }
    c.Next()
  }
}

// extractToken prefers the cookie, with a bearer header fallback for
// non-browser clients.
func extractToken(c *gin.Context, cookieName string) string {
  if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
    return cookie
  }
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return ""
}
