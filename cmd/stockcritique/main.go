package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bububa/stockcritique/app"
	"github.com/bububa/stockcritique/config"
)

var (
	configPath string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:           "stockcritique",
	Short:         "Route financial questions to market, filing, document and sentiment agents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "development logging at debug level")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadApp builds the application from the --config file and the environment
func loadApp(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := app.NewLogger(cfg.Log, debugFlag)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return a, logger, nil
}
