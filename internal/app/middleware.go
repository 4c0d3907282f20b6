package app

import (
  "github.com/shipmydiss/backend/internal/logger"
  "github.com/shipmydiss/backend/internal/middleware"
)

func wireMiddleware(log *logger.Logger, s Services) *middleware.AuthMiddleware {
  return middleware.NewAuthMiddleware(log, s.Auth)
}
