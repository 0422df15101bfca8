package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/linecardbot/line-card-bot/internal/data"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and probe the Google backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "✗ Config: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "✓ Config: platform=%s ledger=%s\n", cfg.Platform, cfg.Ledger.Backend)

			logger, closer, err := newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			repos, err := data.NewRepositories(ctx, cfg, logger)
			if err != nil {
				fmt.Fprintf(out, "✗ Backends: %v\n", err)
				return err
			}
			defer repos.Close()

			result, err := repos.Probe(ctx)
			if result.SheetTitle != "" {
				fmt.Fprintf(out, "✓ Spreadsheet worksheet: %s\n", result.SheetTitle)
			}
			if result.DBPath != "" {
				fmt.Fprintf(out, "✓ SQLite ledger: %s\n", result.DBPath)
			}
			if err != nil {
				fmt.Fprintf(out, "✗ Drive folder: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "✓ Drive folder: %s\n", result.FolderName)
			return nil
		},
	}
}
