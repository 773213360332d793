package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/Togather-Foundation/planner/internal/loadtest"
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "Base URL of the server to test")
		profile   = flag.String("profile", "light", "Load profile: light, medium, heavy, burst")
		rps       = flag.Int("rps", 0, "Custom requests per second (overrides profile)")
		duration  = flag.Duration("duration", 0, "Custom test duration (overrides profile)")
		readRatio = flag.Float64("read-ratio", 0, "Read/write ratio 0.0-1.0 (overrides profile)")
		noRamp    = flag.Bool("no-ramp", false, "Disable ramp-up/ramp-down (instant start/stop)")
		token     = flag.String("token", os.Getenv("PLANNER_TOKEN"), "Admin bearer token; enables event creation writes")
		logLevel  = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := config.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"})

	cfg, ok := loadtest.Profiles[loadtest.Profile(*profile)]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown profile %q\n", *profile)
		os.Exit(2)
	}
	if *rps > 0 {
		cfg.RequestsPerSecond = *rps
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if *readRatio > 0 {
		cfg.ReadRatio = *readRatio
	}
	if *noRamp {
		cfg.RampUpTime = 0
		cfg.RampDownTime = 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tester := loadtest.New(*baseURL, loadtest.WithToken(*token), loadtest.WithLogger(logger))
	stats, err := tester.RunCustom(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(stats.Report())
}
