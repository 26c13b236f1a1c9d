package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/mhollis/stocksync/internal/api/client"
)

func historyCmd() *cobra.Command {
	var (
		sku        string
		changeType string
		user       string
		from       string
		to         string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the change history log",
		Example: `  stocksync history --sku WID-001
  stocksync history --type upload --limit 100
  stocksync history --from 2026-01-01 --to 2026-01-31`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			entries, err := c.QueryHistory(context.Background(), apiclient.HistoryQuery{
				SKU:   sku,
				Type:  changeType,
				User:  user,
				From:  from,
				To:    to,
				Limit: limit,
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(entries)
			}

			if len(entries) == 0 {
				fmt.Println("No history entries found.")
				return nil
			}

			return printHistoryTable(entries)
		},
	}

	cmd.Flags().StringVar(&sku, "sku", "", "filter by SKU")
	cmd.Flags().
		StringVar(&changeType, "type", "", "filter by change type (update, upload, manual, sync)")
	cmd.Flags().StringVar(&user, "user", "", "filter by user")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to return")

	return cmd
}
