package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/config"
	"github.com/seuros/vidpulse/internal/handlers"
	"github.com/seuros/vidpulse/internal/logging"
	"github.com/seuros/vidpulse/internal/middleware"
	"github.com/seuros/vidpulse/internal/panels"
	"github.com/seuros/vidpulse/internal/realtime"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the VidPulse dashboard server",
	Long: `Start the VidPulse dashboard server.

The serve command starts the web server that renders the dashboard and
proxies its panels to the report backend.

Environment variables:
  BACKEND_URL        Report backend base URL (default: http://localhost:5000)
  PORT               Server port (default: 3000)
  REQUEST_TIMEOUT    Backend request timeout (default: none)
  CHART_DELAY        Delay before a chart mounts (default: 100ms)
  ROTATION_INTERVAL  Dominance chart rotation period (default: 2s)
  SESSION_TTL        Idle dashboard lifetime (default: 30m)
  TRUSTED_ORIGINS    Comma-separated origins allowed to drive dashboards
  TRUSTED_PROXIES    Comma-separated proxies allowed to set X-Forwarded-For

Example:
  BACKEND_URL="http://reports.internal:5000" vidpulse serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// server bundles the app with the background work it owns.
type server struct {
	app     *fiber.App
	sweeper *panels.Sweeper
}

func newServer(cfg *config.Config, page []byte) (*server, error) {
	api := newReportClient(cfg)
	hub := realtime.NewHub()
	registry := panels.NewRegistry()
	registry.KeepLive(func(page string) bool {
		return hub.GetClientCount(page) > 0
	})
	service := panels.NewService(api, hub, panels.Options{
		ChartDelay:       cfg.ChartDelay,
		RotationInterval: cfg.RotationInterval,
	})

	ui, err := handlers.NewUI(handlers.Deps{
		Registry: registry,
		Service:  service,
		API:      api,
		Hub:      hub,
		Page:     page,
		Version:  Version,
	})
	if err != nil {
		return nil, err
	}

	app := fiber.New(createFiberConfig("VidPulse", cfg.TrustedProxies))

	app.Use(recover.New())
	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logging.L(),
	}))

	// Add version header to all responses
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-VidPulse-Version", Version)
		return c.Next()
	})
	app.Use(middleware.OriginGuard(middleware.NewTrustedOrigins(cfg.TrustedOrigins)))

	ui.Routes(app)

	return &server{
		app:     app,
		sweeper: panels.NewSweeper(registry, cfg.SessionTTL, sweepInterval),
	}, nil
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := newServer(cfg, DashboardTemplate)
	if err != nil {
		return err
	}

	srv.sweeper.Start()
	defer srv.sweeper.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		if err := srv.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logging.L().Warn("graceful shutdown failed", zap.Error(err))
		}
	}()

	logging.L().Info("VidPulse starting",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.BackendURL),
		zap.String("version", Version),
	)
	if err := srv.app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
