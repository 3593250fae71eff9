package cli

import (
	"github.com/spf13/cobra"

	"github.com/seuros/vidpulse/internal/config"
	"github.com/seuros/vidpulse/internal/reportapi"
)

var Version string

// DashboardTemplate is the embedded page passed from main.
var DashboardTemplate []byte

// Flag overrides shared by every command.
var (
	flagBackendURL string
	flagPort       string
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "vidpulse",
	Short: "Short-video analytics dashboard",
	Long: `VidPulse - a dashboard for short-video platform analytics.

VidPulse serves an interactive dashboard backed by a report service: global
analysis, hashtag and trend reports, publish timing, creator performance,
regional ad recommendations and platform dominance.`,
	Version:      Version,
	SilenceUsage: true,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd)
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string, dashboardTemplate []byte) error {
	Version = version
	DashboardTemplate = dashboardTemplate

	RootCmd.Version = version

	return RootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(config.Overrides{
		BackendURL: flagBackendURL,
		Port:       flagPort,
	})
}

func newReportClient(cfg *config.Config) *reportapi.Client {
	return reportapi.NewClient(cfg.BackendURL, cfg.RequestTimeout)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend-url", "", "Report backend base URL (overrides BACKEND_URL)")
	RootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "HTTP port (overrides PORT)")

	RootCmd.AddCommand(serveCmd)
	RootCmd.Version = Version
}
