package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seuros/vidpulse/internal/config"
	"github.com/seuros/vidpulse/internal/reportapi"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the VidPulse setup",
	Long: `Run health checks on the VidPulse setup.

Checks performed:
  - Backend URL is a valid http(s) URL
  - Trusted origins are configured
  - Platform list endpoint answers
  - Country list endpoint answers
  - Year/month list endpoint answers

Example:
  vidpulse doctor
  vidpulse doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runDoctor(cmd.Context(), cfg, newReportClient(cfg), jsonOutput, cmd.OutOrStdout())
	},
}

var doctorTimeout = 10 * time.Second

type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

const backendSuggestion = "Verify BACKEND_URL and ensure the report backend is running"

func runDoctor(ctx context.Context, cfg *config.Config, api reportapi.API, jsonOutput bool, w io.Writer) error {
	results := []CheckResult{
		checkBackendURL(cfg),
		checkTrustedOrigins(cfg),
	}
	if results[0].Pass {
		results = append(results,
			checkEndpoint(ctx, "Platform List", func(ctx context.Context) (int, error) {
				list, err := api.Platforms(ctx)
				return len(list), err
			}),
			checkEndpoint(ctx, "Country List", func(ctx context.Context) (int, error) {
				list, err := api.Countries(ctx)
				return len(list), err
			}),
			checkEndpoint(ctx, "Year/Month List", func(ctx context.Context) (int, error) {
				list, err := api.YearMonths(ctx)
				return len(list), err
			}),
		)
	}

	if jsonOutput {
		if err := outputDoctorJSON(w, results); err != nil {
			return err
		}
	} else {
		outputDoctorHuman(w, results)
	}

	failed := 0
	for _, r := range results {
		if !r.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func checkBackendURL(cfg *config.Config) CheckResult {
	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return CheckResult{
			Name:       "Backend URL",
			Pass:       false,
			Error:      fmt.Sprintf("invalid backend URL %q", cfg.BackendURL),
			Suggestion: "Set BACKEND_URL to an http:// or https:// address",
		}
	}
	return CheckResult{Name: "Backend URL", Pass: true, Details: cfg.BackendURL}
}

func checkTrustedOrigins(cfg *config.Config) CheckResult {
	if len(cfg.TrustedOrigins) == 0 {
		return CheckResult{
			Name:       "Trusted Origins",
			Pass:       false,
			Error:      "no trusted origins configured",
			Suggestion: "Set TRUSTED_ORIGINS to the domains serving the dashboard",
		}
	}
	return CheckResult{Name: "Trusted Origins", Pass: true, Details: strings.Join(cfg.TrustedOrigins, ", ")}
}

func checkEndpoint(ctx context.Context, name string, fetch func(context.Context) (int, error)) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	n, err := fetch(ctx)
	if err != nil {
		return CheckResult{
			Name:       name,
			Pass:       false,
			Error:      err.Error(),
			Suggestion: backendSuggestion,
		}
	}
	return CheckResult{Name: name, Pass: true, Details: fmt.Sprintf("%d entries", n)}
}

func outputDoctorHuman(w io.Writer, results []CheckResult) {
	_, _ = fmt.Fprintln(w, "\nVidPulse Health Check")

	passed := 0
	for _, r := range results {
		icon := "✓"
		if !r.Pass {
			icon = "✗"
		} else {
			passed++
		}

		_, _ = fmt.Fprintf(w, "%s %s", icon, r.Name)
		if r.Details != "" {
			_, _ = fmt.Fprintf(w, " (%s)", r.Details)
		}
		_, _ = fmt.Fprintln(w)

		if !r.Pass {
			if r.Error != "" {
				_, _ = fmt.Fprintf(w, "  Error: %s\n", r.Error)
			}
			if r.Suggestion != "" {
				_, _ = fmt.Fprintf(w, "  Hint: %s\n", r.Suggestion)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\n%d/%d checks passed\n\n", passed, len(results))
}

func outputDoctorJSON(w io.Writer, results []CheckResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func init() {
	doctorCmd.Flags().Bool("json", false, "Output results as JSON")
	RootCmd.AddCommand(doctorCmd)
}
