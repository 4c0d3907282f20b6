package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/shipmydiss/backend/internal/middleware"
  "github.com/shipmydiss/backend/internal/services"
)

type AuthHandler struct {
  authService   services.AuthService
  appURL        string
  secureCookies bool
}

func NewAuthHandler(authService services.AuthService, appURL string, secureCookies bool) *AuthHandler {
  return &AuthHandler{
    authService:   authService,
    appURL:        appURL,
    secureCookies: secureCookies,
  }
}

func (ah *AuthHandler) RequestLink(c *gin.Context) {
  var req struct {
    Email string `json:"email"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := ah.authService.RequestLoginLink(c.Request.Context(), req.Email); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "If that address has an account, a login link is on its way."})
}

func (ah *AuthHandler) Verify(c *gin.Context) {
  token := c.Query("token")
  sessionToken, _, err := ah.authService.VerifyLoginToken(c.Request.Context(), token)
  if err != nil {
    RespondError(c, err)
    return
  }
  maxAge := int(ah.authService.GetSessionTTL().Seconds())
  c.SetSameSite(http.SameSiteLaxMode)
  c.SetCookie(middleware.SessionCookieName, sessionToken, maxAge, "/", "", ah.secureCookies, true)
  c.Redirect(http.StatusSeeOther, ah.appURL+"/dashboard")
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  c.SetSameSite(http.SameSiteLaxMode)
  c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", ah.secureCookies, true)
  RespondOK(c, gin.H{"message": "logged out"})
}
