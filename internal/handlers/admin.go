package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/middleware"
  "github.com/shipmydiss/backend/internal/services"
)

// adminTokenMaxAge matches the token's own 7-day expiry.
const adminTokenMaxAge = 7 * 24 * 60 * 60

type AdminHandler struct {
  authService   services.AuthService
  userService   services.UserService
  secureCookies bool
}

func NewAdminHandler(authService services.AuthService, userService services.UserService, secureCookies bool) *AdminHandler {
  return &AdminHandler{
    authService:   authService,
    userService:   userService,
    secureCookies: secureCookies,
  }
}

func (ah *AdminHandler) Login(c *gin.Context) {
  var req struct {
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  token, err := ah.authService.AdminLogin(c.Request.Context(), req.Password)
  if err != nil {
    RespondError(c, err)
    return
  }
  c.SetSameSite(http.SameSiteStrictMode)
  c.SetCookie(middleware.AdminCookieName, token, adminTokenMaxAge, "/", "", ah.secureCookies, true)
  RespondOK(c, gin.H{"message": "logged in"})
}

func (ah *AdminHandler) Logout(c *gin.Context) {
  c.SetSameSite(http.SameSiteStrictMode)
  c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", ah.secureCookies, true)
  RespondOK(c, gin.H{"message": "logged out"})
}

func (ah *AdminHandler) ListUsers(c *gin.Context) {
  users, err := ah.userService.ListUsers(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"users": users})
}

func (ah *AdminHandler) CreateUser(c *gin.Context) {
  var req struct {
    Email string `json:"email"`
    Name  string `json:"name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  result, err := ah.userService.CreateUser(c.Request.Context(), req.Email, req.Name)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}

func (ah *AdminHandler) UpdateUser(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  var req struct {
    SubscriptionStatus string `json:"subscription_status"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := ah.userService.UpdateSubscription(c.Request.Context(), userID, req.SubscriptionStatus); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "updated"})
}

func (ah *AdminHandler) DeleteUser(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  if err := ah.userService.DeleteUser(c.Request.Context(), userID); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "deleted"})
}
