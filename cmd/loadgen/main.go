package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/punchlab/punchd/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumSubmissions = 1000
	defaultPunchShare     = 0.25
	defaultTopN           = 50
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultQueueSize      = 10000
	defaultTimeout        = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		n          = flag.Int("n", defaultNumSubmissions, "Number of submissions to generate and send")
		punchShare = flag.Float64("punch-share", defaultPunchShare, "Fraction of submissions routed through the judge endpoint")
		topN       = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent dispatch workers")
		queueSize  = flag.Int("queue", defaultQueueSize, "Dispatch queue buffer size")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for generated submissions (default: submissions_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: loadgen_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	// Setup logging
	if err := loadgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &loadgen.Config{
		BaseURL:        *baseURL,
		NumSubmissions: *n,
		PunchShare:     *punchShare,
		TopN:           *topN,
		Workers:        *workers,
		QueueSize:      *queueSize,
		Timeout:        *timeout,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	// Run the load generator
	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		return
	}
}
