package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/shipmydiss/backend/internal/apierr"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

// RespondError maps a service error onto the wire. Typed *apierr.Error
// carries its own status and code; anything else is a generic 500 so
// internals never leak to the client.
func RespondError(c *gin.Context, err error) {
  var apiErr *apierr.Error
  if errors.As(err, &apiErr) {
    c.JSON(apiErr.Status, ErrorEnvelope{
      Error: APIError{
        Message: apiErr.Error(),
        Code:    apiErr.Code,
      },
    })
    return
  }
  c.JSON(http.StatusInternalServerError, ErrorEnvelope{
    Error: APIError{
      Message: "internal server error",
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}
