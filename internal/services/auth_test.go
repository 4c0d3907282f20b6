package services

import (
  "context"
  "errors"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/testutil"
  "github.com/shipmydiss/backend/internal/types"
)

func newAuthService(t *testing.T, email *fakeEmail, adminPassword, adminBcrypt string) (AuthService, *gorm.DB) {
  t.Helper()
  db := testutil.DB(t)
  r, log := newTestRepos(t, db)
  svc := NewAuthService(
    db, log, r.user, r.loginToken, email,
    "test-jwt-secret", time.Hour,
    "test-admin-secret", adminPassword, adminBcrypt,
    "https://app.example.com",
  )
  return svc, db
}

func TestRequestLoginLinkUnknownEmailIsSilent(t *testing.T) {
  email := &fakeEmail{}
  svc, db := newAuthService(t, email, "", "")

  // Unknown addresses must look identical to known ones from outside.
  if err := svc.RequestLoginLink(context.Background(), "nobody@example.com"); err != nil {
    t.Fatalf("unknown email must not error: %v", err)
  }
  if len(email.sentTo()) != 0 {
    t.Fatalf("email sent for unknown address")
  }
  var count int64
  db.Model(&types.LoginToken{}).Count(&count)
  if count != 0 {
    t.Fatalf("token rows = %d, want 0", count)
  }
}

func TestLoginFlow(t *testing.T) {
  email := &fakeEmail{}
  svc, db := newAuthService(t, email, "", "")
  ctx := context.Background()

  user := testutil.SeedUser(t, db, "student@example.com")

  if err := svc.RequestLoginLink(ctx, "Student@Example.com"); err != nil {
    t.Fatalf("request link: %v", err)
  }
  if len(email.sent) != 1 {
    t.Fatalf("emails sent = %d, want 1", len(email.sent))
  }
  if !strings.Contains(email.sent[0].Text, "/api/auth/verify?token=") {
    t.Fatalf("email missing verify link: %q", email.sent[0].Text)
  }

  var stored types.LoginToken
  if err := db.First(&stored, "user_id = ?", user.ID).Error; err != nil {
    t.Fatalf("load token: %v", err)
  }

  sessionToken, verified, err := svc.VerifyLoginToken(ctx, stored.Token)
  if err != nil {
    t.Fatalf("verify: %v", err)
  }
  if verified.ID != user.ID {
    t.Fatalf("verified wrong user")
  }
  if sessionToken == "" {
    t.Fatalf("empty session token")
  }

  // The session token round-trips into request data.
  authedCtx, err := svc.SetContextFromToken(ctx, sessionToken)
  if err != nil {
    t.Fatalf("set context: %v", err)
  }
  rd := requestdata.GetRequestData(authedCtx)
  if rd == nil {
    t.Fatalf("request data missing from context")
  }
  if rd.UserID != user.ID {
    t.Fatalf("context user = %s, want %s", rd.UserID, user.ID)
  }

  // A login token is single use.
  _, _, err = svc.VerifyLoginToken(ctx, stored.Token)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeUnauthorized {
    t.Fatalf("second use: got %v, want unauthorized", err)
  }
}

func TestVerifyLoginTokenExpired(t *testing.T) {
  svc, db := newAuthService(t, &fakeEmail{}, "", "")
  user := testutil.SeedUser(t, db, "student@example.com")
  expired := testutil.SeedLoginToken(t, db, user.ID, uuid.NewString(), time.Now().UTC().Add(-time.Minute))

  _, _, err := svc.VerifyLoginToken(context.Background(), expired.Token)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeUnauthorized {
    t.Fatalf("got %v, want unauthorized", err)
  }
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
  svc, _ := newAuthService(t, &fakeEmail{}, "", "")
  _, err := svc.SetContextFromToken(context.Background(), "not.a.jwt")
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeUnauthorized {
    t.Fatalf("got %v, want unauthorized", err)
  }
}

func TestAdminLoginPlainPassword(t *testing.T) {
  svc, _ := newAuthService(t, &fakeEmail{}, "hunter2", "")

  if _, err := svc.AdminLogin(context.Background(), "wrong"); err == nil {
    t.Fatalf("wrong password accepted")
  }
  if _, err := svc.AdminLogin(context.Background(), ""); err == nil {
    t.Fatalf("empty password accepted")
  }

  token, err := svc.AdminLogin(context.Background(), "hunter2")
  if err != nil {
    t.Fatalf("admin login: %v", err)
  }
  if err := svc.VerifyAdminToken(token); err != nil {
    t.Fatalf("verify admin token: %v", err)
  }
  if err := svc.VerifyAdminToken("garbage"); err == nil {
    t.Fatalf("garbage admin token accepted")
  }
}

func TestAdminLoginBcryptTakesPrecedence(t *testing.T) {
  hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
  if err != nil {
    t.Fatalf("bcrypt: %v", err)
  }
  svc, _ := newAuthService(t, &fakeEmail{}, "plain-ignored", string(hash))

  if _, err := svc.AdminLogin(context.Background(), "plain-ignored"); err == nil {
    t.Fatalf("plain password accepted while bcrypt hash configured")
  }
  if _, err := svc.AdminLogin(context.Background(), "correct horse"); err != nil {
    t.Fatalf("bcrypt password rejected: %v", err)
  }
}

func TestSessionTokenRejectedAsAdminToken(t *testing.T) {
  svc, db := newAuthService(t, &fakeEmail{}, "hunter2", "")
  user := testutil.SeedUser(t, db, "student@example.com")
  token := testutil.SeedLoginToken(t, db, user.ID, uuid.NewString(), time.Now().UTC().Add(time.Hour))

  sessionToken, _, err := svc.VerifyLoginToken(context.Background(), token.Token)
  if err != nil {
    t.Fatalf("verify login: %v", err)
  }
  // Student sessions are signed with a different key and carry no admin claim.
  if err := svc.VerifyAdminToken(sessionToken); err == nil {
    t.Fatalf("session token accepted as admin token")
  }
}
