package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/shipmydiss/backend/internal/apierr"
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/platform/sendgrid"
  "github.com/shipmydiss/backend/internal/repos"
  "github.com/shipmydiss/backend/internal/types"
  "github.com/shipmydiss/backend/internal/utils"
)

type AdminUser struct {
  ID                 uuid.UUID `json:"id"`
  Email              string    `json:"email"`
  Name               string    `json:"name"`
  SubscriptionStatus string    `json:"subscription_status"`
  ProjectCount       int64     `json:"project_count"`
  CreatedAt          time.Time `json:"created_at"`
}

type CreateUserResult struct {
  User      *types.User `json:"user"`
  EmailSent bool        `json:"email_sent"`
  EmailErr  string      `json:"email_error,omitempty"`
}

type UserService interface {
  ListUsers(ctx context.Context) ([]*AdminUser, error)
  // CreateUser creates the account (or returns the existing one for the
  // email) and sends an invite. A failed invite email does not fail the
  // creation; the result records it.
  CreateUser(ctx context.Context, email, name string) (*CreateUserResult, error)
  UpdateSubscription(ctx context.Context, userID uuid.UUID, status string) error
  DeleteUser(ctx context.Context, userID uuid.UUID) error
  GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type userService struct {
  db             *gorm.DB
  log            *logger.Logger
  userRepo       repos.UserRepo
  projectRepo    repos.ProjectRepo
  milestoneRepo  repos.MilestoneRepo
  checkInRepo    repos.CheckInRepo
  logRepo        repos.AIInteractionLogRepo
  loginTokenRepo repos.LoginTokenRepo
  email          sendgrid.Client
  appURL         string
}

func NewUserService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  projectRepo repos.ProjectRepo,
  milestoneRepo repos.MilestoneRepo,
  checkInRepo repos.CheckInRepo,
  logRepo repos.AIInteractionLogRepo,
  loginTokenRepo repos.LoginTokenRepo,
  email sendgrid.Client,
  appURL string,
) UserService {
  return &userService{
    db:             db,
    log:            baseLog.With("service", "UserService"),
    userRepo:       userRepo,
    projectRepo:    projectRepo,
    milestoneRepo:  milestoneRepo,
    checkInRepo:    checkInRepo,
    logRepo:        logRepo,
    loginTokenRepo: loginTokenRepo,
    email:          email,
    appURL:         appURL,
  }
}

func (us *userService) ListUsers(ctx context.Context) ([]*AdminUser, error) {
  users, err := us.userRepo.ListAll(ctx, nil)
  if err != nil {
    return nil, err
  }

  ids := make([]uuid.UUID, 0, len(users))
  for _, u := range users {
    ids = append(ids, u.ID)
  }
  counts, err := us.projectRepo.CountByUserIDs(ctx, nil, ids)
  if err != nil {
    return nil, err
  }

  out := make([]*AdminUser, 0, len(users))
  for _, u := range users {
    out = append(out, &AdminUser{
      ID:                 u.ID,
      Email:              u.Email,
      Name:               u.Name,
      SubscriptionStatus: u.SubscriptionStatus,
      ProjectCount:       counts[u.ID],
      CreatedAt:          u.CreatedAt,
    })
  }
  return out, nil
}

func (us *userService) CreateUser(ctx context.Context, email, name string) (*CreateUserResult, error) {
  normalized := utils.NormalizeEmail(email)
  if normalized == "" {
    return nil, apierr.Validation(fmt.Errorf("a valid email is required"))
  }

  existing, err := us.userRepo.GetByEmails(ctx, nil, []string{normalized})
  if err != nil {
    return nil, err
  }

  var user *types.User
  if len(existing) > 0 {
    user = existing[0]
  } else {
    user = &types.User{
      ID:                 uuid.New(),
      Email:              normalized,
      Name:               name,
      SubscriptionStatus: types.SubscriptionFree,
    }
    if _, err := us.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
      return nil, err
    }
  }

  result := &CreateUserResult{User: user}
  _, sendErr := us.email.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: user.Email, Name: user.Name}},
    Subject: "You're in: Ship My Dissertation",
    Text: fmt.Sprintf(
      "Hi%s,\n\nYour Ship My Dissertation account is ready. Sign in here:\n\n%s/login\n\nEnter this email address and we'll send you a login link.",
      emailGreeting(user.Name), us.appURL,
    ),
  })
  if sendErr != nil {
    us.log.Warn("Invite email failed", "user_id", user.ID.String(), "error", sendErr.Error())
    result.EmailErr = sendErr.Error()
  } else {
    result.EmailSent = true
  }

  us.log.Info("User created", "user_id", user.ID.String(), "email_sent", result.EmailSent)
  return result, nil
}

func (us *userService) UpdateSubscription(ctx context.Context, userID uuid.UUID, status string) error {
  if !types.ValidSubscriptionStatus(status) {
    return apierr.Validation(fmt.Errorf("invalid subscription status %q", status))
  }
  affected, err := us.userRepo.UpdateSubscriptionStatus(ctx, nil, userID, status)
  if err != nil {
    return err
  }
  if affected == 0 {
    return apierr.NotFound(fmt.Errorf("user %s not found", userID))
  }
  return nil
}

// DeleteUser removes the user and everything they own. Children are deleted
// explicitly inside one transaction rather than relying on the database
// cascades alone.
func (us *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
  return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    projectIDs, err := us.projectRepo.ListIDsByUserID(ctx, tx, userID)
    if err != nil {
      return err
    }
    if err := us.logRepo.DeleteByProjectIDs(ctx, tx, projectIDs); err != nil {
      return err
    }
    if err := us.checkInRepo.DeleteByProjectIDs(ctx, tx, projectIDs); err != nil {
      return err
    }
    if err := us.milestoneRepo.DeleteByProjectIDs(ctx, tx, projectIDs); err != nil {
      return err
    }
    if err := us.projectRepo.DeleteByUserID(ctx, tx, userID); err != nil {
      return err
    }
    if err := us.loginTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); err != nil {
      return err
    }
    affected, err := us.userRepo.Delete(ctx, tx, userID)
    if err != nil {
      return err
    }
    if affected == 0 {
      return apierr.NotFound(fmt.Errorf("user %s not found", userID))
    }
    us.log.Info("User deleted", "user_id", userID.String(), "projects", len(projectIDs))
    return nil
  })
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
  users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    return nil, err
  }
  if len(users) == 0 {
    return nil, apierr.NotFound(fmt.Errorf("user %s not found", userID))
  }
  return users[0], nil
}
