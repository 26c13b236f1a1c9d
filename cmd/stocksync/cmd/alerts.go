package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func alertsCmd() *cobra.Command {
	alertsRoot := &cobra.Command{
		Use:   "alerts",
		Short: "View alerts and test notification providers",
	}

	alertsRoot.AddCommand(
		alertsListCmd(),
		alertsTestCmd(),
	)

	return alertsRoot
}

func alertsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent alerts",
		Example: `  stocksync alerts list
  stocksync alerts list --limit 100 --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			alerts, err := c.ListAlerts(context.Background(), limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(alerts)
			}

			if len(alerts) == 0 {
				fmt.Println("No alerts found.")
				return nil
			}

			return printAlertsTable(alerts)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum alerts to return")

	return cmd
}

func alertsTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <provider>",
		Short: "Send a test notification",
		Long:  "Sends a test alert through the named provider (email, slack, sms, webhook).",
		Args:  cobra.ExactArgs(1),
		Example: `  stocksync alerts test slack
  stocksync alerts test email`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.TestProvider(context.Background(), args[0]); err != nil {
				return err
			}

			fmt.Printf("Test notification sent via %s.\n", args[0])
			return nil
		},
	}
}
