// Package main provides the fitscore CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "fitscore",
		Short: "Environmental impact grades for food recipes",
		Long: `FitScore aggregates life cycle impact assessment (LCIA) values of food
items, grades them against dataset-wide bounds, and combines item grades into
a recipe grade.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .fitscore/config.yaml in cwd or a parent)")

	rootCmd.AddCommand(
		newAssessCmd(&configPath),
		newItemsCmd(&configPath),
		newBoundsCmd(&configPath),
		newMigrateCmd(&configPath),
		newImportCmd(&configPath),
		newExportCmd(&configPath),
		newDatasetsCmd(&configPath),
		newReportCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
