package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitscore/fitscore/internal/recipe"
	"github.com/fitscore/fitscore/internal/store"
	"github.com/fitscore/fitscore/pkg/lcia"
)

func newItemsCmd(configPath *string) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List the item catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			items, err := e.store.Items(cmd.Context())
			if err != nil {
				return err
			}
			if outputFmt == "json" {
				keyed := make(map[string]store.CatalogItem, len(items))
				for _, it := range items {
					keyed[it.Key()] = it
				}
				return encodeJSON(os.Stdout, keyed)
			}
			printItems(os.Stdout, items)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

func printItems(w io.Writer, items []store.CatalogItem) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tPRODUCT\tGROUP\tPROXY")
	for _, it := range items {
		group := "-"
		if it.Group != nil {
			group = *it.Group
		}
		proxy := ""
		if it.Proxy {
			proxy = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Key(), it.ProductName, group, proxy)
	}
	tw.Flush()
}

func newBoundsCmd(configPath *string) *cobra.Command {
	var (
		schemeName string
		schemeID   int
		outputFmt  string
	)

	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Show the min/max scaling bounds of a weighting scheme",
		Long: `Computes the bounds used to scale single scores, stages and impact
categories. Proxy items are excluded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBounds(cmd.Context(), *configPath, schemeName, schemeID, outputFmt)
		},
	}
	cmd.Flags().StringVar(&schemeName, "scheme", "", "Weighting scheme name (default: scoring.default_scheme)")
	cmd.Flags().IntVar(&schemeID, "scheme-id", 0, "Weighting scheme id, instead of --scheme")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.MarkFlagsMutuallyExclusive("scheme", "scheme-id")
	return cmd
}

func runBounds(ctx context.Context, configPath, schemeName string, schemeID int, outputFmt string) error {
	e, err := openEnv(ctx, configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	if schemeName == "" && schemeID == 0 {
		schemeName = e.cfg.Scoring.DefaultScheme
	}
	scheme, err := e.store.ResolveScheme(ctx, schemeName, schemeID)
	if err != nil {
		return err
	}
	engine, err := e.engine()
	if err != nil {
		return err
	}
	plan, err := engine.Prepare(ctx, scheme.ID)
	if err != nil {
		return fmt.Errorf("computing bounds: %w", err)
	}
	if outputFmt == "json" {
		return encodeJSON(os.Stdout, plan.Bounds)
	}

	stageNames, err := recipe.StageNames(ctx, e.store, plan.Selection.Stages)
	if err != nil {
		return err
	}
	catNames, err := recipe.CategoryNames(ctx, e.store, plan.Selection.Categories)
	if err != nil {
		return err
	}
	printBounds(os.Stdout, scheme, plan.Bounds, stageNames, catNames)
	return nil
}

func printBounds(w io.Writer, scheme lcia.Scheme, b *lcia.MinMaxValues, stages map[lcia.LCStageID]string, cats map[lcia.ImpactCategoryID]string) {
	fmt.Fprintf(w, "Bounds for %s\n\n", scheme)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DIMENSION\tMIN\tMAX")
	fmt.Fprintf(tw, "Single score\t%.6g\t%.6g\n", b.SingleScore.Min, b.SingleScore.Max)

	stageIDs := make([]lcia.LCStageID, 0, len(b.Stages))
	for id := range b.Stages {
		stageIDs = append(stageIDs, id)
	}
	sort.Slice(stageIDs, func(i, j int) bool { return stageIDs[i] < stageIDs[j] })
	for _, id := range stageIDs {
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\n", firstNonEmpty(stages[id], id.String()), b.Stages[id].Min, b.Stages[id].Max)
	}

	catIDs := make([]lcia.ImpactCategoryID, 0, len(b.Categories))
	for id := range b.Categories {
		catIDs = append(catIDs, id)
	}
	sort.Slice(catIDs, func(i, j int) bool { return catIDs[i] < catIDs[j] })
	for _, id := range catIDs {
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\n", firstNonEmpty(cats[id], id.String()), b.Categories[id].Min, b.Categories[id].Max)
	}
	tw.Flush()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
