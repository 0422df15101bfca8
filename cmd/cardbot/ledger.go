package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/conf"
	"github.com/linecardbot/line-card-bot/internal/data"
)

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the local ledger",
	}
	cmd.AddCommand(ledgerTailCmd())
	return cmd
}

func ledgerTailCmd() *cobra.Command {
	var limit int
	var dbPath string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent ledger rows (sqlite backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				_ = godotenv.Load()
				dbPath = conf.LoadFromEnv().Ledger.DBPath
			}
			ledger, err := data.NewSQLiteLedgerRepo(dbPath)
			if err != nil {
				return err
			}
			defer ledger.Close()

			entries, err := ledger.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ledger rows.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tNAME\tKIND\tCONTENT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.RecordedAt.Format(domain.LedgerTimeLayout), e.DisplayName, e.Kind, e.Content)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "lines", "n", 20, "number of rows to show")
	cmd.Flags().StringVar(&dbPath, "db", "", "ledger database path (default: LEDGER_DB_PATH)")
	return cmd
}
