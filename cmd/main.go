package main

import (
  "fmt"
  "os"

  "github.com/shipmydiss/backend/internal/app"
)

func main() {
  a, err := app.New()
  if err != nil {
    fmt.Printf("Failed to start: %v\n", err)
    os.Exit(1)
  }
  defer a.Close()

  port := os.Getenv("PORT")
  if port == "" {
    port = "8080"
  }
  fmt.Printf("Server listening on :%s\n", port)
  if err := a.Run(":" + port); err != nil {
    a.Log.Warn("Server failed", "error", err)
  }
}
