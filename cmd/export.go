package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pickbetter/labelscan/internal/export"
)

var (
	exportFormat      string
	exportDestination string
	exportOutputPath  string
	exportS3Bucket    string
	exportS3Region    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your scan history as json, csv or parquet",
	Long: `Export writes the full scan history to a local file or straight to
an S3 bucket. Flags override the export section of the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		cfg := app.cfg.Export
		if exportFormat != "" {
			cfg.Format = exportFormat
		}
		if exportDestination != "" {
			cfg.Destination = exportDestination
		}
		if exportOutputPath != "" {
			cfg.OutputPath = exportOutputPath
		}
		if exportS3Bucket != "" {
			cfg.S3Bucket = exportS3Bucket
		}
		if exportS3Region != "" {
			cfg.S3Region = exportS3Region
		}

		items, err := app.store.List(ctx, app.userID(), 0)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No scans to export.")
			return nil
		}

		target, err := export.Export(items, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d items to %s\n", len(items), target)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format: json, csv or parquet")
	exportCmd.Flags().StringVar(&exportDestination, "destination", "", "Destination: local or s3")
	exportCmd.Flags().StringVar(&exportOutputPath, "output", "", "Local output directory")
	exportCmd.Flags().StringVar(&exportS3Bucket, "s3-bucket", "", "S3 bucket for the s3 destination")
	exportCmd.Flags().StringVar(&exportS3Region, "s3-region", "", "AWS region for the s3 destination")
	rootCmd.AddCommand(exportCmd)
}
