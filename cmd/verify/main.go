package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/healthdash/internal/verify"
	"github.com/okian/healthdash/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		apiURL       = flag.String("api", "http://localhost:5000", "Base URL of the project-health API")
		dashboardURL = flag.String("dashboard", "http://localhost:9080", "Base URL of the dashboard")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose      = flag.Bool("verbose", false, "Log every expected card")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		verify.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	stats, err := verify.Run(ctx, &verify.Config{
		APIURL:       *apiURL,
		DashboardURL: *dashboardURL,
		Timeout:      *timeout,
		Verbose:      *verbose,
	})
	verify.WriteSummary(os.Stdout, stats)
	if err != nil {
		os.Stderr.WriteString("verification failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
