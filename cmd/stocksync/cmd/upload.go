package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func uploadCmd() *cobra.Command {
	uploadRoot := &cobra.Command{
		Use:   "upload",
		Short: "Bulk inventory uploads",
	}

	uploadRoot.AddCommand(
		uploadFileCmd(),
		uploadListCmd(),
		uploadTemplateCmd(),
	)

	return uploadRoot
}

func uploadFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "Upload a CSV inventory file",
		Long: "Parses, validates, and writes the rows of a CSV inventory file to the\n" +
			"stock provider in batches. Rows that fail validation are reported in\n" +
			"the result without aborting the rest of the upload.",
		Args: cobra.ExactArgs(1),
		Example: `  stocksync upload file inventory.csv
  stocksync upload file inventory.csv --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening upload file: %w", err)
			}
			defer f.Close()

			c := newClient()
			result, err := c.Upload(context.Background(), f)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}

			return printUploadResult(result)
		},
	}
}

func uploadListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent upload results",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			uploads, err := c.ListUploads(context.Background(), limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(uploads)
			}

			if len(uploads) == 0 {
				fmt.Println("No uploads found.")
				return nil
			}

			return printUploadsTable(uploads)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum uploads to return")

	return cmd
}

func uploadTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Print the CSV upload template",
		Example: `  stocksync upload template > inventory.csv`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			template, err := c.UploadTemplate(context.Background())
			if err != nil {
				return err
			}

			fmt.Print(template)
			return nil
		},
	}
}
