package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/linecardbot/line-card-bot/internal/conf"
	"github.com/linecardbot/line-card-bot/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "cardbot",
		Short: "Chat bot that records keyword notes and the images that follow them",
		Long: `cardbot listens on LINE (or Feishu) for trigger phrases such as "@卡".
The text after a trigger is logged to the ledger, and an image the same user sends
shortly afterwards is uploaded to Google Drive and logged with its link.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(ledgerCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cardbot %s\n", version)
		},
	}
}

// loadConfig loads .env and the environment, then validates
func loadConfig() (*conf.Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("[CONFIG] No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from configuration
func newLogger(cfg *conf.Config, withFile bool) (*slog.Logger, io.Closer, error) {
	opts := logging.Options{Level: cfg.Log.Level}
	if withFile {
		opts.Dir = cfg.Log.Dir
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}
