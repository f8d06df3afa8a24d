// Package recipe turns user input into scoring requests and assessments into
// named reports. The HTTP service and the CLI share it.
package recipe

import (
	"context"
	"fmt"
	"sort"

	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
	"github.com/fitscore/fitscore/pkg/surface"
)

// Resolver turns request input into database identifiers.
type Resolver interface {
	GeoByCountry(ctx context.Context, iso3 string) (lcia.GeoID, error)
	ResolveScheme(ctx context.Context, name string, id int) (lcia.Scheme, error)
}

// Namer looks up the display name of any identifier kind.
type Namer interface {
	Name(ctx context.Context, ref lcia.NameRef) (string, error)
}

// BuildRequest validates "<item_id>-<ISO3>" -> kg amounts and resolves
// geographies and the weighting scheme. Items are ordered by key.
func BuildRequest(ctx context.Context, res Resolver, amounts map[string]float64, schemeName string, schemeID int) (scoring.RecipeRequest, error) {
	if len(amounts) == 0 {
		return scoring.RecipeRequest{}, &lcia.ValidationError{Field: "items", Value: "{}", Reason: "a recipe needs at least one item"}
	}
	scheme, err := res.ResolveScheme(ctx, schemeName, schemeID)
	if err != nil {
		return scoring.RecipeRequest{}, err
	}

	keys := make([]string, 0, len(amounts))
	for k := range amounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	geos := make(map[string]lcia.GeoID)
	items := make([]scoring.RecipeItem, 0, len(keys))
	for _, k := range keys {
		key, err := lcia.ParseItemKey(k)
		if err != nil {
			return scoring.RecipeRequest{}, err
		}
		amount, err := lcia.NewItemAmount(amounts[k])
		if err != nil {
			return scoring.RecipeRequest{}, fmt.Errorf("item %s: %w", k, err)
		}
		geo, ok := geos[key.Country]
		if !ok {
			geo, err = res.GeoByCountry(ctx, key.Country)
			if err != nil {
				return scoring.RecipeRequest{}, err
			}
			geos[key.Country] = geo
		}
		items = append(items, scoring.RecipeItem{Key: key, GeoID: geo, Amount: amount})
	}
	return scoring.RecipeRequest{Scheme: scheme, Items: items}, nil
}

// BuildReport names every dimension, item and geography of a and builds its
// report.
func BuildReport(ctx context.Context, n Namer, a *scoring.Assessment) (*surface.Report, error) {
	if a == nil || a.Recipe == nil {
		return nil, fmt.Errorf("assessment has no recipe result")
	}
	names, err := ReportNames(ctx, n, a)
	if err != nil {
		return nil, err
	}
	return surface.NewReport(a, names)
}

// ReportNames resolves the names a report of a needs. Each identifier is
// looked up once.
func ReportNames(ctx context.Context, n Namer, a *scoring.Assessment) (surface.Names, error) {
	results := []*lcia.GradedLCIAResult{a.Recipe}
	for _, ia := range a.Items {
		results = append(results, ia.Result)
	}
	var stageIDs []lcia.LCStageID
	var catIDs []lcia.ImpactCategoryID
	for _, r := range results {
		for id := range r.StageValues {
			stageIDs = append(stageIDs, id)
		}
		for id := range r.ImpactCategoryValues {
			catIDs = append(catIDs, id)
		}
	}

	stages, err := StageNames(ctx, n, stageIDs)
	if err != nil {
		return surface.Names{}, err
	}
	cats, err := CategoryNames(ctx, n, catIDs)
	if err != nil {
		return surface.Names{}, err
	}
	names := surface.Names{
		Stages:     stages,
		Categories: cats,
		Products:   make(map[lcia.ItemKey]string, len(a.Items)),
		Countries:  make(map[lcia.GeoID]string),
	}
	for _, ia := range a.Items {
		if _, ok := names.Countries[ia.Item.GeoID]; !ok {
			country, err := n.Name(ctx, lcia.GeoRef{ID: ia.Item.GeoID})
			if err != nil {
				return surface.Names{}, err
			}
			names.Countries[ia.Item.GeoID] = country
		}
		product, err := n.Name(ctx, lcia.ItemRef{ID: ia.Item.Key.ItemID})
		if err != nil {
			return surface.Names{}, err
		}
		names.Products[ia.Item.Key] = product
	}
	return names, nil
}

// StageNames returns the names of the given stages; duplicates are looked
// up once.
func StageNames(ctx context.Context, n Namer, ids []lcia.LCStageID) (map[lcia.LCStageID]string, error) {
	out := make(map[lcia.LCStageID]string, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		name, err := n.Name(ctx, lcia.StageRef{ID: id})
		if err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, nil
}

// CategoryNames returns the names of the given impact categories.
func CategoryNames(ctx context.Context, n Namer, ids []lcia.ImpactCategoryID) (map[lcia.ImpactCategoryID]string, error) {
	out := make(map[lcia.ImpactCategoryID]string, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		name, err := n.Name(ctx, lcia.CategoryRef{ID: id})
		if err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, nil
}
