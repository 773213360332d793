package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type healthcheckFlags struct {
	url        string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	jsonOutput bool
}

func newHealthcheckCommand() *cobra.Command {
	var flags healthcheckFlags

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
It exits with code 0 if the server is healthy, non-zero otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := flags.url
			if url == "" {
				url = defaultHealthURL()
			}

			result := performHealthCheckWithRetries(url, flags)
			if flags.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printHealthResult(cmd, result)
			}

			if !result.IsHealthy {
				if result.Error != "" {
					return fmt.Errorf("unhealthy: %s", result.Error)
				}
				return fmt.Errorf("unhealthy: status=%s", result.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.url, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 5*time.Second, "timeout per attempt")
	cmd.Flags().IntVar(&flags.retries, "retries", 0, "extra attempts after a failure")
	cmd.Flags().DurationVar(&flags.retryDelay, "retry-delay", time.Second, "wait between attempts")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

// HealthResponse matches the body served by the /health handler.
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthCheckResult is the outcome of one or more probe attempts.
type HealthCheckResult struct {
	URL        string                 `json:"url"`
	IsHealthy  bool                   `json:"healthy"`
	Status     string                 `json:"status,omitempty"`
	HTTPStatus int                    `json:"http_status,omitempty"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
	LatencyMs  int64                  `json:"latency_ms"`
	RetryCount int                    `json:"retry_count,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

func defaultHealthURL() string {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

func performHealthCheck(url string, timeout time.Duration) HealthCheckResult {
	result := HealthCheckResult{URL: url}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()
	result.HTTPStatus = resp.StatusCode

	// 503 still carries a body describing the failing checks.
	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		result.Error = fmt.Sprintf("invalid response: %v", err)
		return result
	}
	result.Status = body.Status
	result.Checks = body.Checks
	result.IsHealthy = resp.StatusCode == http.StatusOK && body.Status == "healthy"
	return result
}

func performHealthCheckWithRetries(url string, flags healthcheckFlags) HealthCheckResult {
	var result HealthCheckResult
	for attempt := 0; ; attempt++ {
		result = performHealthCheck(url, flags.timeout)
		result.RetryCount = attempt
		if result.IsHealthy || attempt >= flags.retries {
			return result
		}
		time.Sleep(flags.retryDelay)
	}
}

func printHealthResult(cmd *cobra.Command, result HealthCheckResult) {
	out := cmd.OutOrStdout()
	state := "healthy"
	if !result.IsHealthy {
		state = "unhealthy"
	}
	fmt.Fprintf(out, "%s: %s (%dms)\n", result.URL, state, result.LatencyMs)
	for name, check := range result.Checks {
		line := fmt.Sprintf("  %-10s %s", name, check.Status)
		if check.Message != "" {
			line += "  " + check.Message
		}
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
}
