package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Trigger a manual sync cycle",
		Long: "Triggers a full fetch from the stock provider, logs quantity changes,\n" +
			"rebuilds master/kit relationships, and dispatches any threshold alerts.",
		Example: `  stocksync sync
  stocksync sync --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			summary, err := c.TriggerSync(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(summary)
			}

			fmt.Println("Sync completed.")
			return printSyncSummary(summary)
		},
	}
}

func relationshipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relationships",
		Short: "List resolved master/kit relationships",
		Example: `  stocksync relationships
  stocksync relationships --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			rels, err := c.ListRelationships(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(rels)
			}

			if len(rels) == 0 {
				fmt.Println("No relationships resolved yet. Run a sync first.")
				return nil
			}

			return printRelationshipsTable(rels)
		},
	}
}
