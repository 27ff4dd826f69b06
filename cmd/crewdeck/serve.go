package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/simserver"
)

var (
	serveHost     string
	servePort     int
	serveFixtures string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local simulation backend",
	Long: `Run the bundled simulation backend so the dashboard works without a
live fleet.

The server seeds itself with a built-in recruiting world. Point --fixtures
at a YAML file to reseed it; edits to that file reload the world live, so
a demo can be reshaped without restarting.

Examples:
  crewdeck serve
  crewdeck serve --port 9000
  crewdeck serve --fixtures demo/world.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Bind port (default from config)")
	serveCmd.Flags().StringVar(&serveFixtures, "fixtures", "", "Fixture YAML seeding the world")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings := simserver.SettingsFromConfig(cfg)
	if serveHost != "" {
		settings.Host = serveHost
	}
	if servePort > 0 {
		settings.Port = servePort
	}
	if serveFixtures != "" {
		settings.FixturesPath = serveFixtures
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	opts := []simserver.Option{simserver.WithLogger(logger)}
	if settings.FixturesPath != "" {
		fixture, err := simserver.LoadFixture(settings.FixturesPath)
		if err != nil {
			return err
		}
		opts = append(opts, simserver.WithWorld(simserver.NewWorld(fixture)))
	}

	srv := simserver.NewServer(settings, opts...)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Printf("simulation backend listening on %s", srv.BaseURL())

	if settings.FixturesPath != "" {
		closeWatch, err := simserver.WatchFixtures(settings.FixturesPath, srv.World(), logger)
		if err != nil {
			logger.Printf("fixture watch disabled: %v", err)
		} else {
			defer func() { _ = closeWatch() }()
			logger.Printf("watching %s for fixture edits", settings.FixturesPath)
		}
	}

	<-ctx.Done()
	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
