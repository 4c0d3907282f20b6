package utils

import "testing"

func TestNormalizeEmail(t *testing.T) {
  cases := []struct {
    in   string
    want string
  }{
    {"  Student@Example.COM ", "student@example.com"},
    {"already@lower.io", "already@lower.io"},
    {"no-at-sign", ""},
    {"   ", ""},
    {"", ""},
  }
  for _, tc := range cases {
    if got := NormalizeEmail(tc.in); got != tc.want {
      t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
    }
  }
}
