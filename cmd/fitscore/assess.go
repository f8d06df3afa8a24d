package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/internal/recipe"
)

func newAssessCmd(configPath *string) *cobra.Command {
	var opts assessOpts

	cmd := &cobra.Command{
		Use:   "assess <item_id-ISO3=kg>...",
		Short: "Grade a recipe",
		Long: `Assesses a recipe given as item keys with their amounts in kg, e.g.

  fitscore assess 20134-FRA=1.2 24070-FRA=0.5 --scheme ef31_r0510`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath = *configPath
			opts.items = args
			return runAssess(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.schemeName, "scheme", "", "Weighting scheme name (default: scoring.default_scheme)")
	cmd.Flags().IntVar(&opts.schemeID, "scheme-id", 0, "Weighting scheme id, instead of --scheme")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text, json or markdown")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Archive the report in blob storage")
	cmd.MarkFlagsMutuallyExclusive("scheme", "scheme-id")

	return cmd
}

type assessOpts struct {
	configPath string
	items      []string
	schemeName string
	schemeID   int
	outputFmt  string
	save       bool
}

func runAssess(ctx context.Context, opts assessOpts) error {
	renderer, err := rendererFor(opts.outputFmt)
	if err != nil {
		return err
	}
	amounts, err := parseAmounts(opts.items)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	schemeName := opts.schemeName
	if schemeName == "" && opts.schemeID == 0 {
		schemeName = e.cfg.Scoring.DefaultScheme
	}
	req, err := recipe.BuildRequest(ctx, e.store, amounts, schemeName, opts.schemeID)
	if err != nil {
		return err
	}

	engine, err := e.engine()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Assessing %d items with %s...\n", len(req.Items), req.Scheme)
	a, err := engine.AssessRecipe(ctx, req)
	if err != nil {
		return fmt.Errorf("assessing recipe: %w", err)
	}

	report, err := recipe.BuildReport(ctx, e.store, a)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	if opts.save {
		blobs, err := e.blobs(ctx)
		if err != nil {
			return err
		}
		if err := blob.PutJSON(ctx, blobs, blob.KindReport, a.ID, report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save report: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Report saved: %s\n", a.ID)
		}
	}

	if err := renderer.Render(os.Stdout, report); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}

// parseAmounts reads "<item_id>-<ISO3>=<kg>" arguments. Keys are validated
// later, together with the amounts.
func parseAmounts(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid item %q: expected <item_id>-<ISO3>=<kg>", arg)
		}
		kg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for %s: %w", key, err)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("item %s given more than once", key)
		}
		out[key] = kg
	}
	return out, nil
}
