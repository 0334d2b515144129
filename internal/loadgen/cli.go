package loadgen

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/punchlab/punchd/pkg/logger"
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
		logFile = "loadgen_" + timestamp + ".log"
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

// ShowHelp prints usage information for the load generator.
func ShowHelp() {
	os.Stdout.WriteString(`punchd Load Generator
=====================

A concurrent tool for exercising the punchd leaderboard service.

Usage:
  go run cmd/loadgen/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -n int
        Number of submissions to generate and send (default 1000)
  -punch-share float
        Fraction of submissions routed through the judge endpoint (default 0.25)
  -top int
        Number of top entries to fetch from leaderboard (default 50)
  -workers int
        Number of concurrent dispatch workers (default CPU cores * 2)
  -queue int
        Dispatch queue buffer size (default 10000)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated submissions (default: submissions_TIMESTAMP.json)
  -log string
        Log file for run output (default: loadgen_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run cmd/loadgen/main.go

  # Run with custom parameters
  go run cmd/loadgen/main.go -n 5000 -workers 16 -url http://localhost:8080

  # Route every submission through the judge
  go run cmd/loadgen/main.go -punch-share 1.0 -n 500
`)
}
