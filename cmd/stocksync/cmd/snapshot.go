package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	snapshotRoot := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage inventory snapshots",
		Long: "Snapshots are immutable point-in-time captures of the inventory view.\n" +
			"They are taken automatically on the daily/weekly/monthly schedule and\n" +
			"can be taken manually or compared against each other here.",
	}

	snapshotRoot.AddCommand(
		snapshotListCmd(),
		snapshotShowCmd(),
		snapshotTakeCmd(),
		snapshotCompareCmd(),
	)

	return snapshotRoot
}

func snapshotListCmd() *cobra.Command {
	var (
		snapType string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Example: `  stocksync snapshot list
  stocksync snapshot list --type daily --limit 7`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			snapshots, err := c.ListSnapshots(context.Background(), snapType, limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(snapshots)
			}

			if len(snapshots) == 0 {
				fmt.Println("No snapshots found.")
				return nil
			}

			return printSnapshotsTable(snapshots)
		},
	}

	cmd.Flags().
		StringVar(&snapType, "type", "", "snapshot type filter (daily, weekly, monthly, manual)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum snapshots to return")

	return cmd
}

func snapshotShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show snapshot details",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			s, err := c.GetSnapshot(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(s)
			}

			return printSnapshotDetail(s)
		},
	}
}

func snapshotTakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Take a manual snapshot now",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			s, err := c.TakeSnapshot(context.Background(), "manual")
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(s)
			}

			fmt.Printf("Snapshot %s captured: %d products, $%.2f total value.\n",
				s.ID, s.TotalProducts, s.TotalValue)
			return nil
		},
	}
}

func snapshotCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <from_id> <to_id>",
		Short: "Diff two snapshots",
		Args:  cobra.ExactArgs(2),
		Example: `  stocksync snapshot compare a1b2c3 d4e5f6
  stocksync snapshot compare a1b2c3 d4e5f6 --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			comparison, err := c.CompareSnapshots(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(comparison)
			}

			return printComparison(comparison)
		},
	}
}
