package sendgrid

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/shipmydiss/backend/internal/logger"
)

type Client interface {
  Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
  APIKey           string
  BaseURL          string
  DefaultFromEmail string
  DefaultFromName  string
  Timeout          time.Duration
  MaxRetries       int
}

func ConfigFromEnv() Config {
  timeoutSec := 30
  if v := strings.TrimSpace(os.Getenv("SENDGRID_TIMEOUT_SECONDS")); v != "" {
    if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }
  maxRetries := 4
  if v := strings.TrimSpace(os.Getenv("SENDGRID_MAX_RETRIES")); v != "" {
    if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
      maxRetries = parsed
    }
  }
  return Config{
    APIKey:           strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
    BaseURL:          strings.TrimSpace(os.Getenv("SENDGRID_BASE_URL")),
    DefaultFromEmail: strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
    DefaultFromName:  strings.TrimSpace(os.Getenv("SENDGRID_FROM_NAME")),
    Timeout:          time.Duration(timeoutSec) * time.Second,
    MaxRetries:       maxRetries,
  }
}

func NewFromEnv(log *logger.Logger) (Client, error) {
  return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }
  if strings.TrimSpace(cfg.APIKey) == "" {
    return nil, fmt.Errorf("missing SENDGRID_API_KEY")
  }
  if strings.TrimSpace(cfg.BaseURL) == "" {
    cfg.BaseURL = "https://api.sendgrid.com"
  }
  cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

  if cfg.Timeout <= 0 {
    cfg.Timeout = 30 * time.Second
  }
  if cfg.MaxRetries <= 0 {
    cfg.MaxRetries = 4
  }

  return &client{
    log:        log.With("client", "SendGridClient"),
    cfg:        cfg,
    httpClient: &http.Client{Timeout: cfg.Timeout},
    maxRetries: cfg.MaxRetries,
  }, nil
}

type client struct {
  log        *logger.Logger
  cfg        Config
  httpClient *http.Client
  maxRetries int
}

// --- public request/response types ---

type EmailAddress struct {
  Email string `json:"email"`
  Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
  From    EmailAddress
  To      []EmailAddress
  Subject string
  Text    string
  HTML    string
}

type SendEmailResult struct {
  StatusCode int
  MessageID  string
  RequestID  string
}

// --- SendGrid mail send wire types ---

type mailSendRequest struct {
  Personalizations []personalization `json:"personalizations"`
  From             EmailAddress      `json:"from"`
  Subject          string            `json:"subject"`
  Content          []mailContent     `json:"content"`
}

type personalization struct {
  To []EmailAddress `json:"to"`
}

type mailContent struct {
  Type  string `json:"type"`
  Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
  if c == nil || c.httpClient == nil {
    return nil, fmt.Errorf("sendgrid client unavailable")
  }

  if strings.TrimSpace(req.From.Email) == "" {
    req.From.Email = c.cfg.DefaultFromEmail
    if strings.TrimSpace(req.From.Name) == "" {
      req.From.Name = c.cfg.DefaultFromName
    }
  }
  req.From.Email = strings.TrimSpace(req.From.Email)
  req.Subject = strings.TrimSpace(req.Subject)

  if req.From.Email == "" {
    return nil, fmt.Errorf("sendgrid: From.Email required (or set SENDGRID_FROM_EMAIL)")
  }
  if len(req.To) == 0 {
    return nil, fmt.Errorf("sendgrid: To required")
  }
  if req.Subject == "" {
    return nil, fmt.Errorf("sendgrid: Subject required")
  }

  contents := []mailContent{}
  if t := strings.TrimSpace(req.Text); t != "" {
    contents = append(contents, mailContent{Type: "text/plain", Value: t})
  }
  if h := strings.TrimSpace(req.HTML); h != "" {
    contents = append(contents, mailContent{Type: "text/html", Value: h})
  }
  if len(contents) == 0 {
    return nil, fmt.Errorf("sendgrid: Text or HTML content required")
  }

  wire := mailSendRequest{
    Personalizations: []personalization{{To: req.To}},
    From:             req.From,
    Subject:          req.Subject,
    Content:          contents,
  }

  resp, _, err := c.do(ctx, "POST", "/v3/mail/send", wire)
  if err != nil {
    return nil, err
  }

  return &SendEmailResult{
    StatusCode: resp.StatusCode,
    MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
    RequestID:  strings.TrimSpace(resp.Header.Get("X-Request-Id")),
  }, nil
}

// ---------- HTTP / retry helpers ----------

type errorItem struct {
  Message string `json:"message"`
  Field   any    `json:"field,omitempty"`
  Help    any    `json:"help,omitempty"`
}

type errorResponse struct {
  Errors []errorItem `json:"errors"`
}

type HTTPError struct {
  StatusCode int
  Body       string
  Errors     []errorItem
}

func (e *HTTPError) Error() string {
  if e == nil {
    return "sendgrid: <nil error>"
  }
  if len(e.Errors) > 0 && strings.TrimSpace(e.Errors[0].Message) != "" {
    return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Errors[0].Message)
  }
  msg := strings.TrimSpace(e.Body)
  if msg == "" {
    msg = "<empty body>"
  }
  if len(msg) > 4000 {
    msg = msg[:4000] + "..."
  }
  return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func isRetryable(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) {
    return true
  }
  var netErr net.Error
  if errors.As(err, &netErr) && netErr.Timeout() {
    return true
  }
  var httpErr *HTTPError
  if errors.As(err, &httpErr) {
    if httpErr.StatusCode == 408 || httpErr.StatusCode == 429 {
      return true
    }
    return httpErr.StatusCode >= 500 && httpErr.StatusCode <= 599
  }
  return false
}

func jitter(base time.Duration) time.Duration {
  if base <= 0 {
    return 0
  }
  delta := base.Seconds() * 0.2
  v := base.Seconds() - delta + rand.Float64()*2*delta
  return time.Duration(v * float64(time.Second))
}

func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
  backoff := 1 * time.Second

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return nil, nil, ctx.Err()
    }

    resp, raw, err := c.doOnce(ctx, method, path, body)
    if err == nil {
      return resp, raw, nil
    }

    if !isRetryable(err) || attempt == c.maxRetries {
      return nil, nil, err
    }

    sleepFor := backoff
    if resp != nil {
      if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
        if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
          sleepFor = time.Duration(secs) * time.Second
        }
      }
    }
    if sleepFor > 10*time.Second {
      sleepFor = 10 * time.Second
    }
    sleepFor = jitter(sleepFor)

    c.log.Warn("Sendgrid request retrying",
      "path", path,
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    time.Sleep(sleepFor)
    backoff *= 2
  }

  return nil, nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
    var er errorResponse
    if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 {
      he.Errors = er.Errors
    }
    return resp, raw, he
  }

  return resp, raw, nil
}
