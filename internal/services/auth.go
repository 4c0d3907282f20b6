package services

import (
  "context"
  "crypto/subtle"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/platform/sendgrid"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/requestdata"
  "github.com/shipmydiss/backend/internal/types"
  "github.com/shipmydiss/backend/internal/utils"
)

const loginTokenTTL = 30 * time.Minute

// adminTokenTTL is fixed, not configurable.
const adminTokenTTL = 7 * 24 * time.Hour

type JWTClaims struct {
  jwt.RegisteredClaims
}

type AdminClaims struct {
  Admin bool `json:"admin"`
  jwt.RegisteredClaims
}

type AuthService interface {
  // RequestLoginLink emails a magic link to a known user. Unknown emails
  // return success so addresses cannot be probed.
  RequestLoginLink(ctx context.Context, email string) error
  VerifyLoginToken(ctx context.Context, token string) (string, *types.User, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  AdminLogin(ctx context.Context, password string) (string, error)
  VerifyAdminToken(tokenString string) error
  GetSessionTTL() time.Duration
}

type authService struct {
  db               *gorm.DB
  log              *logger.Logger
  userRepo         repos.UserRepo
  loginTokenRepo   repos.LoginTokenRepo
  email            sendgrid.Client
  jwtSecretKey     string
  sessionTTL       time.Duration
  adminSecretKey   string
  adminPassword    string
  adminPasswordBcr string
  appURL           string
}

func NewAuthService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  loginTokenRepo repos.LoginTokenRepo,
  email sendgrid.Client,
  jwtSecretKey string,
  sessionTTL time.Duration,
  adminSecretKey string,
  adminPassword string,
  adminPasswordBcrypt string,
  appURL string,
) AuthService {
  return &authService{
    db:               db,
    log:              baseLog.With("service", "AuthService"),
    userRepo:         userRepo,
    loginTokenRepo:   loginTokenRepo,
    email:            email,
    jwtSecretKey:     jwtSecretKey,
    sessionTTL:       sessionTTL,
    adminSecretKey:   adminSecretKey,
    adminPassword:    adminPassword,
    adminPasswordBcr: adminPasswordBcrypt,
    appURL:           appURL,
  }
}

func (as *authService) RequestLoginLink(ctx context.Context, email string) error {
  normalized := utils.NormalizeEmail(email)
  if normalized == "" {
    return apierr.Validation(fmt.Errorf("email is required"))
  }

  users, err := as.userRepo.GetByEmails(ctx, nil, []string{normalized})
  if err != nil {
    return err
  }
  if len(users) == 0 {
    // Same outcome as a real send, minus the email.
    as.log.Info("Login link requested for unknown email")
    return nil
  }
  user := users[0]

  token := &types.LoginToken{
    ID:        uuid.New(),
    UserID:    user.ID,
    Token:     uuid.New().String(),
    ExpiresAt: time.Now().UTC().Add(loginTokenTTL),
  }
  if _, err := as.loginTokenRepo.Create(ctx, nil, []*types.LoginToken{token}); err != nil {
    return err
  }

  link := fmt.Sprintf("%s/api/auth/verify?token=%s", as.appURL, token.Token)
  _, err = as.email.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: user.Email, Name: user.Name}},
    Subject: "Your Ship My Dissertation login link",
    Text: fmt.Sprintf(
      "Hi%s,\n\nClick the link below to sign in. It expires in 30 minutes.\n\n%s\n\nIf you didn't request this, you can ignore it.",
      emailGreeting(user.Name), link,
    ),
  })
  if err != nil {
    return fmt.Errorf("failed to send login email: %w", err)
  }

  as.log.Info("Login link sent", "user_id", user.ID.String())
  return nil
}

func emailGreeting(name string) string {
  if name == "" {
    return ""
  }
  return " " + name
}

func (as *authService) VerifyLoginToken(ctx context.Context, token string) (string, *types.User, error) {
  if token == "" {
    return "", nil, apierr.Validation(fmt.Errorf("token is required"))
  }

  var sessionToken string
  var user *types.User
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, ftErr := as.loginTokenRepo.GetByToken(ctx, tx, token)
    if ftErr != nil {
      return ftErr
    }
    if found == nil || found.ConsumedAt != nil || found.ExpiresAt.Before(time.Now().UTC()) {
      return apierr.Unauthorized(fmt.Errorf("login link is invalid or has expired"))
    }

    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{found.UserID})
    if uErr != nil {
      return uErr
    }
    if len(users) == 0 {
      return apierr.Unauthorized(fmt.Errorf("login link is invalid or has expired"))
    }
    user = users[0]

    if mcErr := as.loginTokenRepo.MarkConsumed(ctx, tx, found.ID, time.Now().UTC()); mcErr != nil {
      return mcErr
    }

    tok, sErr := as.signSessionToken(user.ID)
    if sErr != nil {
      return sErr
    }
    sessionToken = tok
    return nil
  })
  if err != nil {
    return "", nil, err
  }

  as.log.Info("Login token verified", "user_id", user.ID.String())
  return sessionToken, user, nil
}

func (as *authService) signSessionToken(userID uuid.UUID) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   userID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.sessionTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, apierr.Unauthorized(fmt.Errorf("missing session token"))
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apierr.Unauthorized(fmt.Errorf("failed to parse token: %w", err))
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apierr.Unauthorized(fmt.Errorf("invalid or expired session token"))
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apierr.Unauthorized(fmt.Errorf("invalid user id in token: %w", err))
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) AdminLogin(ctx context.Context, password string) (string, error) {
  if password == "" {
    return "", apierr.Unauthorized(fmt.Errorf("invalid password"))
  }

  var match bool
  if as.adminPasswordBcr != "" {
    match = bcrypt.CompareHashAndPassword([]byte(as.adminPasswordBcr), []byte(password)) == nil
  } else if as.adminPassword != "" {
    match = subtle.ConstantTimeCompare([]byte(as.adminPassword), []byte(password)) == 1
  }
  if !match {
    as.log.Warn("Admin login failed")
    return "", apierr.Unauthorized(fmt.Errorf("invalid password"))
  }

  claims := AdminClaims{
    Admin: true,
    RegisteredClaims: jwt.RegisteredClaims{
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(adminTokenTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  signed, err := token.SignedString([]byte(as.adminSecretKey))
  if err != nil {
    return "", err
  }

  as.log.Info("Admin logged in")
  return signed, nil
}

func (as *authService) VerifyAdminToken(tokenString string) error {
  if tokenString == "" {
    return apierr.Unauthorized(fmt.Errorf("missing admin token"))
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
    if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
    }
    return []byte(as.adminSecretKey), nil
  })
  if err != nil {
    return apierr.Unauthorized(fmt.Errorf("failed to parse admin token: %w", err))
  }
  claims, ok := parsedToken.Claims.(*AdminClaims)
  if !ok || !parsedToken.Valid || !claims.Admin {
    return apierr.Unauthorized(fmt.Errorf("invalid or expired admin token"))
  }
  return nil
}

func (as *authService) GetSessionTTL() time.Duration {
  return as.sessionTTL
}
