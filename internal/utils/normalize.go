package utils

import "strings"

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive. Returns "" for anything that cannot be an address.
func NormalizeEmail(email string) string {
  e := strings.ToLower(strings.TrimSpace(email))
  if !strings.Contains(e, "@") {
    return ""
  }
  return e
}
