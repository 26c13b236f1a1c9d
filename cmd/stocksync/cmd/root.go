// Package cmd implements the stocksync CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/mhollis/stocksync/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "stocksync",
		Short: "Inventory synchronization and change-management engine",
		Long: "stocksync keeps a local inventory view in step with an upstream stock\n" +
			"provider. The serve command runs the sync engine, scheduler, and HTTP\n" +
			"API; the remaining commands are a client for a running server.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "config file path (serve and migrate)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	viper.SetEnvPrefix("STOCKSYNC")
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(relationshipsCmd())
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
