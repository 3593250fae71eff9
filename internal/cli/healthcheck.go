package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"github.com/seuros/vidpulse/internal/httpx"
)

var healthcheckTimeout = 2 * time.Second

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if the server is healthy",
	Long:  "Performs an HTTP request to the /up endpoint to verify the server and its report backend are operational",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		url := fmt.Sprintf("http://localhost:%s/up", cfg.Port)
		return runHealthcheck(cmd.Context(), &fasthttp.Client{}, url, cmd.ErrOrStderr())
	},
}

func runHealthcheck(ctx context.Context, client httpx.Doer, url string, stderr io.Writer) error {
	status, _, err := httpx.Exchange(ctx, client, fasthttp.MethodGet, url, nil, healthcheckTimeout)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Healthcheck failed: %v\n", err)
		return fmt.Errorf("healthcheck failed: %w", err)
	}

	if status != fasthttp.StatusOK {
		_, _ = fmt.Fprintf(stderr, "Healthcheck failed: status %d\n", status)
		return fmt.Errorf("healthcheck failed: status %d", status)
	}

	return nil
}

func init() {
	RootCmd.AddCommand(healthcheckCmd)
}
