package poller

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/lapedge/lapedge/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "poll_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the polling tool.
func ShowHelp() {
	os.Stdout.WriteString(`LapEdge Live Poller
===================

A terminal client that follows a live race through the LapEdge API.

Usage:
  go run cmd/poll/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -event string
        Event identifier, e.g. wc-heerenveen-2024 (required)
  -distance int
        Distance in meters, e.g. 1500 (required)
  -gender string
        Category: "women" or "men" (default "women")
  -interval duration
        Polling interval (default 3s)
  -timeout duration
        HTTP request timeout (default 10s)
  -cycles int
        Number of poll cycles; 0 runs until interrupted (default 0)
  -log string
        Log file for session output (default: poll_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Follow the women's 1500m at a World Cup
  go run cmd/poll/main.go -event wc-heerenveen-2024 -distance 1500

  # Follow the men's 5000m with a faster refresh
  go run cmd/poll/main.go -event wc-heerenveen-2024 -distance 5000 -gender men -interval 2s

  # Take a single snapshot
  go run cmd/poll/main.go -event wc-heerenveen-2024 -distance 500 -cycles 1
`)
}
