package middleware

import (
  "context"
  "fmt"
  "net/http"
  "net/http/httptest"
  "testing"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/testutil"
  "github.com/shipmydiss/backend/internal/types"
)

type fakeAuthService struct {
  userID     uuid.UUID
  validToken string
  adminToken string
}

func (f *fakeAuthService) RequestLoginLink(ctx context.Context, email string) error { return nil }

func (f *fakeAuthService) VerifyLoginToken(ctx context.Context, token string) (string, *types.User, error) {
  return "", nil, apierr.Unauthorized(fmt.Errorf("not implemented"))
}

func (f *fakeAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString != f.validToken {
    return ctx, apierr.Unauthorized(fmt.Errorf("bad token"))
  }
  return requestdata.WithRequestData(ctx, &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      f.userID,
  }), nil
}

func (f *fakeAuthService) AdminLogin(ctx context.Context, password string) (string, error) {
  return "", apierr.Unauthorized(fmt.Errorf("not implemented"))
}

func (f *fakeAuthService) VerifyAdminToken(tokenString string) error {
  if tokenString != f.adminToken {
    return apierr.Unauthorized(fmt.Errorf("bad admin token"))
  }
  return nil
}

func (f *fakeAuthService) GetSessionTTL() time.Duration { return time.Hour }

func newAuthRouter(t *testing.T, auth *fakeAuthService) *gin.Engine {
  t.Helper()
  gin.SetMode(gin.TestMode)
  am := NewAuthMiddleware(testutil.Logger(t), auth)

  router := gin.New()
  router.GET("/me", am.RequireAuth(), func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID.String()})
  })
  router.GET("/admin", am.RequireAdmin(), func(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
  })
  return router
}

func TestRequireAuth(t *testing.T) {
  auth := &fakeAuthService{userID: uuid.New(), validToken: "good-session"}
  router := newAuthRouter(t, auth)

  // No credentials.
  w := httptest.NewRecorder()
  router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
  if w.Code != http.StatusUnauthorized {
    t.Fatalf("no token: status = %d, want 401", w.Code)
  }

  // Session cookie.
  req := httptest.NewRequest(http.MethodGet, "/me", nil)
  req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-session"})
  w = httptest.NewRecorder()
  router.ServeHTTP(w, req)
  if w.Code != http.StatusOK {
    t.Fatalf("cookie: status = %d, want 200", w.Code)
  }

  // Bearer fallback for non-browser clients.
  req = httptest.NewRequest(http.MethodGet, "/me", nil)
  req.Header.Set("Authorization", "Bearer good-session")
  w = httptest.NewRecorder()
  router.ServeHTTP(w, req)
  if w.Code != http.StatusOK {
    t.Fatalf("bearer: status = %d, want 200", w.Code)
  }

  // Rejected token.
  req = httptest.NewRequest(http.MethodGet, "/me", nil)
  req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
  w = httptest.NewRecorder()
  router.ServeHTTP(w, req)
  if w.Code != http.StatusUnauthorized {
    t.Fatalf("forged: status = %d, want 401", w.Code)
  }
}

func TestRequireAdminUsesSeparateCookie(t *testing.T) {
  auth := &fakeAuthService{userID: uuid.New(), validToken: "good-session", adminToken: "good-admin"}
  router := newAuthRouter(t, auth)

  // A valid student session does not grant admin access.
  req := httptest.NewRequest(http.MethodGet, "/admin", nil)
  req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-session"})
  w := httptest.NewRecorder()
  router.ServeHTTP(w, req)
  if w.Code != http.StatusUnauthorized {
    t.Fatalf("session cookie on admin route: status = %d, want 401", w.Code)
  }

  req = httptest.NewRequest(http.MethodGet, "/admin", nil)
  req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: "good-admin"})
  w = httptest.NewRecorder()
  router.ServeHTTP(w, req)
  if w.Code != http.StatusOK {
    t.Fatalf("admin cookie: status = %d, want 200", w.Code)
  }
}
