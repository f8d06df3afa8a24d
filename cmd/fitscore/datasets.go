package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/internal/dataset"
	"github.com/fitscore/fitscore/pkg/surface"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the LCIA database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.store.Migrate(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Schema up to date (%s)\n", e.store.Driver())
			return nil
		},
	}
}

// openDatasets opens the environment and a dataset service on top of it.
func openDatasets(ctx context.Context, configPath string) (*env, *dataset.Service, error) {
	e, err := openEnv(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := e.blobs(ctx)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return e, dataset.NewService(e.store, blobs, e.logger), nil
}

func newImportCmd(configPath *string) *cobra.Command {
	var (
		file    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "import <dataset-id>",
		Short: "Replace the database content with a dataset",
		Long: `Loads a dataset into the database. Without --file the dataset is read
from blob storage; with --file it is read from a local JSON document and also
stored under the given id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, args[0], file, migrate)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Local dataset document to import")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Run schema migrations first")
	return cmd
}

func runImport(ctx context.Context, configPath, id, file string, migrate bool) error {
	e, svc, err := openDatasets(ctx, configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	if migrate {
		if err := e.store.Migrate(); err != nil {
			return err
		}
	}

	var m *dataset.Manifest
	if file == "" {
		fmt.Fprintf(os.Stderr, "Importing dataset %s from %s storage...\n", id, e.cfg.Storage.Backend)
		m, err = svc.Import(ctx, id)
	} else {
		m, err = importFile(ctx, svc, id, file)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Imported %d items, %d weighted results in %dms\n",
		m.Tables["metadata"], m.Tables["weightedresults"], m.DurationMs)
	return nil
}

func importFile(ctx context.Context, svc *dataset.Service, id, path string) (*dataset.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	snap, err := dataset.Decode(f)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Importing dataset %s from %s...\n", id, path)
	if err := svc.Save(ctx, id, snap); err != nil {
		return nil, err
	}
	return svc.Load(ctx, id, snap)
}

func newExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dataset-id>",
		Short: "Store the database content as a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, svc, err := openDatasets(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			m, err := svc.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported dataset %s (%d weighted results) to %s storage\n",
				m.ID, m.Tables["weightedresults"], e.cfg.Storage.Backend)
			return nil
		},
	}
}

func newDatasetsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List stored datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, svc, err := openDatasets(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			ids, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(os.Stderr, "No datasets stored.")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func newReportCmd(configPath *string) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "report <assessment-id>",
		Short: "Show an archived assessment report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := rendererFor(outputFmt)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			blobs, err := blob.New(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}

			var report surface.Report
			if err := blob.GetJSON(cmd.Context(), blobs, blob.KindReport, args[0], &report); err != nil {
				return fmt.Errorf("loading report %s: %w", args[0], err)
			}
			return renderer.Render(os.Stdout, &report)
		},
	}
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json or markdown")
	return cmd
}
