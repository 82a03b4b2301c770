package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lapedge/lapedge/internal/poller"
)

// Default configuration constants.
const (
	defaultInterval = 3 * time.Second
	defaultTimeout  = 10 * time.Second
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		eventID  = flag.String("event", "", "Event identifier")
		distance = flag.Int("distance", 0, "Distance in meters")
		gender   = flag.String("gender", "women", "Category: women or men")
		interval = flag.Duration("interval", defaultInterval, "Polling interval")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		cycles   = flag.Int("cycles", 0, "Number of poll cycles; 0 runs until interrupted")
		logFile  = flag.String("log", "", "Log file for session output (default: poll_log_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		poller.ShowHelp()
		return
	}

	if err := poller.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := poller.New(poller.Config{
		BaseURL:  *baseURL,
		EventID:  *eventID,
		Distance: *distance,
		Gender:   *gender,
		Interval: *interval,
		Timeout:  *timeout,
		Cycles:   *cycles,
		LogFile:  *logFile,
		Verbose:  *verbose,
	}, nil)

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		os.Stderr.WriteString("Polling session failed: " + err.Error() + "\n")
	}
}
