package apierr

import "fmt"

// Error codes used across handlers and services.
const (
  CodeUnauthorized   = "unauthorized"
  CodeValidation     = "validation_error"
  CodeNotFound       = "not_found"
  CodeExtraction     = "extraction_error"
  CodeUpstreamFormat = "upstream_format_error"
)

type Error struct {
  Status int
  Code   string
  Err    error
}

func (e *Error) Error() string {
  if e == nil {
    return ""
  }
  if e.Err != nil {
    return e.Err.Error()
  }
  if e.Code != "" {
    return e.Code
  }
  if e.Status != 0 {
    return fmt.Sprintf("api error (%d)", e.Status)
  }
  return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
  return &Error{Status: status, Code: code, Err: err}
}

func Unauthorized(err error) *Error {
  return New(401, CodeUnauthorized, err)
}

func Validation(err error) *Error {
  return New(400, CodeValidation, err)
}

// NotFound covers both missing rows and rows not owned by the caller,
// so ownership is indistinguishable from non-existence.
func NotFound(err error) *Error {
  return New(404, CodeNotFound, err)
}

func Extraction(err error) *Error {
  return New(422, CodeExtraction, err)
}

// UpstreamFormat marks a model response that was not valid JSON or was
// missing required fields. Never retried; surfaced as a retryable failure.
func UpstreamFormat(err error) *Error {
  return New(502, CodeUpstreamFormat, err)
}
