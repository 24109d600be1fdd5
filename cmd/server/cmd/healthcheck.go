package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is ready",
		Long: `Performs a readiness check by calling the /readyz endpoint.

This command is used by container HEALTHCHECK directives. It exits with
code 0 when the server reports healthy or degraded, non-zero otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := healthcheckURL
			if url == "" {
				port := os.Getenv("SERVER_PORT")
				if port == "" {
					port = "8080"
				}
				url = fmt.Sprintf("http://localhost:%s/readyz", port)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), healthcheckTimeout)
			defer cancel()

			status, err := probeReadiness(ctx, http.DefaultClient, url)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}

	healthcheckTimeout time.Duration
	healthcheckURL     string
)

func init() {
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 5*time.Second, "request timeout")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "readiness URL (default: http://localhost:{SERVER_PORT}/readyz)")
}

type readinessResponse struct {
	Status string `json:"status"`
}

// probeReadiness returns the reported status, or an error when the server
// is unreachable or unhealthy.
func probeReadiness(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body readinessResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("parse health check response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unhealthy: status %d (%s)", resp.StatusCode, body.Status)
	}
	switch body.Status {
	case "healthy", "degraded":
		return body.Status, nil
	default:
		return "", fmt.Errorf("unhealthy: status=%s", body.Status)
	}
}
