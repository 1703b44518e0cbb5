package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/matchwire/internal/app"
	"github.com/vovakirdan/matchwire/internal/config"
	"github.com/vovakirdan/matchwire/internal/log"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string
	flagHistory  string
	flagNATSURL  string
)

var rootCmd = &cobra.Command{
	Use:   "matchwire",
	Short: "Pairs WebSocket clients into two-player matches and relays their frames",
	Long: `matchwire accepts WebSocket connections on /ws, queues them in arrival order
and pairs them two at a time. Each client learns its role (WHITE or BLACK by
default) and every frame it sends afterwards is relayed verbatim to its opponent
until one of them disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	rootCmd.Flags().StringVar(&flagHistory, "history-db", "", "SQLite path for match history")
	rootCmd.Flags().StringVar(&flagNATSURL, "nats-url", "", "NATS server URL for lifecycle events")
}

func main() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "matchwire: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	bootstrapLogger := log.New("info")

	cfg, path, err := config.Load(bootstrapLogger, flagConfig)
	if err != nil {
		return err
	}

	overrides := config.Config{
		Addr:          flagAddr,
		LogLevel:      flagLogLevel,
		HistoryDBPath: flagHistory,
	}
	overrides.Events.NATSURL = flagNATSURL
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("log_level", cfg.LogLevel).Msg("configuration loaded")

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting matchwire server")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
