package app

import (
  "strings"
  "time"

  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/utils"
)

type Config struct {
  JWTSecretKey        string
  SessionTTL          time.Duration
  AdminSecretKey      string
  AdminPassword       string
  AdminPasswordBcrypt string
  CronSecret          string
  AppURL              string
  AllowedOrigins      []string
  SecureCookies       bool
  BetaMode            bool
  Environment         string
}

func LoadConfig(log *logger.Logger) Config {
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  sessionTTLSeconds := utils.GetEnvAsInt("SESSION_TTL_SECONDS", 30*24*3600, log)
  adminSecretKey := utils.GetEnv("ADMIN_SECRET_KEY", jwtSecretKey, log)
  appURL := strings.TrimRight(utils.GetEnv("APP_URL", "http://localhost:3000", log), "/")

  origins := []string{appURL}
  if raw := utils.GetEnv("ALLOWED_ORIGINS", "", log); raw != "" {
    origins = nil
    for _, o := range strings.Split(raw, ",") {
      if o = strings.TrimSpace(o); o != "" {
        origins = append(origins, o)
      }
    }
  }

  return Config{
    JWTSecretKey:        jwtSecretKey,
    SessionTTL:          time.Duration(sessionTTLSeconds) * time.Second,
    AdminSecretKey:      adminSecretKey,
    AdminPassword:       utils.GetEnv("ADMIN_PASSWORD", "", log),
    AdminPasswordBcrypt: utils.GetEnv("ADMIN_PASSWORD_BCRYPT", "", log),
    CronSecret:          utils.GetEnv("CRON_SECRET", "", log),
    AppURL:              appURL,
    AllowedOrigins:      origins,
    SecureCookies:       utils.GetEnvAsBool("SECURE_COOKIES", false, log),
    BetaMode:            utils.GetEnvAsBool("BETA_MODE", true, log),
    Environment:         utils.GetEnv("ENVIRONMENT", "development", log),
  }
}
