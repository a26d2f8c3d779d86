package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbehnke/cdma-visualizer/pkg/config"
	"github.com/dbehnke/cdma-visualizer/pkg/logger"
	"github.com/dbehnke/cdma-visualizer/pkg/simulation"
	"github.com/dbehnke/cdma-visualizer/pkg/web"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cdma-visualizer",
		Short: "CDMA with Walsh codes: simulation server and CLI",
		Long: `CDMA Visualizer spreads each station's bits with its own Walsh code,
sums every station onto one shared channel and recovers each station by
correlation. Without a subcommand it serves the JSON API, live WebSocket
updates and the browser UI.`,
		Version:       fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		RunE:          runServer,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Add flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default: search for config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (overrides config)")
	rootCmd.Flags().String("host", "", "Server host (overrides config)")
	rootCmd.Flags().IntP("port", "p", 0, "Server port (overrides config)")

	rootCmd.AddCommand(newSimulateCmd(), newWalshCmd())
	return rootCmd
}

// loadConfig loads the configuration named by --config and applies --debug
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	debugOverride, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debugOverride {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, console io.Writer) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		File:        cfg.Logging.File,
		MaxSize:     cfg.Logging.MaxSize,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAge:      cfg.Logging.MaxAge,
		Development: cfg.Logging.Level == "debug",
		Console:     console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	hostOverride, _ := cmd.Flags().GetString("host")
	portOverride, _ := cmd.Flags().GetInt("port")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if hostOverride != "" {
		cfg.Server.Host = hostOverride
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	log, err := newLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer log.Sync()

	configFile, _ := cmd.Flags().GetString("config")
	log.Info("CDMA Visualizer starting",
		logger.String("version", Version),
		logger.String("build_time", BuildTime),
		logger.String("config_file", configFile))

	events := make(chan simulation.Event, max(cfg.WebSocket.BufferSize, 1))
	sim := simulation.NewFromConfig(cfg.Simulation, log, events)
	server := web.NewServer(cfg, log, sim, events, Version, BuildTime)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Error("Web server error", logger.Error(err))
		return err
	}

	return nil
}
