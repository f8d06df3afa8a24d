package dataset

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/fitscore/fitscore/internal/store"
	"github.com/fitscore/fitscore/pkg/lcia"
)

// Validate checks every row of snap against the LCIA value invariants and
// the foreign keys between tables. All violations are reported together.
func Validate(snap *store.Snapshot) error {
	if snap == nil {
		return &lcia.ValidationError{Field: "dataset", Value: "null", Reason: "empty document"}
	}
	var errs *multierror.Error
	add := func(err error, where string) {
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", where, err))
		}
	}
	missing := func(table, key string) {
		errs = multierror.Append(errs, &lcia.NotFoundError{Kind: table, Key: key})
	}

	geos := make(map[int]bool, len(snap.Geographies))
	for _, g := range snap.Geographies {
		_, err := lcia.NewGeoID(g.GeoID)
		add(err, "geographies")
		geos[g.GeoID] = true
	}
	groups := make(map[int]bool, len(snap.Groups))
	for _, g := range snap.Groups {
		groups[g.GroupID] = true
	}
	subgroups := make(map[int]bool, len(snap.Subgroups))
	for _, g := range snap.Subgroups {
		subgroups[g.SubgroupID] = true
	}
	categories := make(map[int]bool, len(snap.ImpactCategories))
	for _, c := range snap.ImpactCategories {
		_, err := lcia.NewImpactCategoryID(c.ICID)
		add(err, "impactcategories")
		categories[c.ICID] = true
	}
	stages := make(map[int]bool, len(snap.LifeCycleStages))
	for _, s := range snap.LifeCycleStages {
		_, err := lcia.NewLCStageID(s.StageID)
		add(err, "lifecyclestages")
		stages[s.StageID] = true
	}
	schemes := make(map[int]bool, len(snap.Schemes))
	for _, s := range snap.Schemes {
		_, err := lcia.NewWeightingSchemeID(s.SchemeID)
		add(err, "weightingschemes")
		_, err = lcia.NewWeightingSchemeName(s.Name)
		add(err, "weightingschemes")
		schemes[s.SchemeID] = true
	}

	perScheme := make(map[int]map[lcia.ImpactCategoryID]lcia.ICWeight)
	for _, w := range snap.Weights {
		if !schemes[w.SchemeID] {
			missing("weighting scheme", fmt.Sprint(w.SchemeID))
		}
		if !categories[w.ICID] {
			missing("impact category", fmt.Sprint(w.ICID))
		}
		v, err := lcia.NewICWeight(w.Weight)
		add(err, "impactcategoryweights")
		if perScheme[w.SchemeID] == nil {
			perScheme[w.SchemeID] = make(map[lcia.ImpactCategoryID]lcia.ICWeight)
		}
		perScheme[w.SchemeID][lcia.ImpactCategoryID(w.ICID)] = v
	}
	ids := make([]int, 0, len(perScheme))
	for id := range perScheme {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		_, err := lcia.NewWeights(perScheme[id])
		add(err, fmt.Sprintf("weights of scheme %d", id))
	}

	type itemKey struct {
		id  string
		geo int
	}
	items := make(map[itemKey]bool, len(snap.Items))
	for _, it := range snap.Items {
		_, err := lcia.NewItemID(it.ItemID)
		add(err, "metadata")
		if !geos[it.GeoID] {
			missing("geography", fmt.Sprint(it.GeoID))
		}
		if it.GroupID != nil && !groups[*it.GroupID] {
			missing("food group", fmt.Sprint(*it.GroupID))
		}
		if it.SubgroupID != nil && !subgroups[*it.SubgroupID] {
			missing("food subgroup", fmt.Sprint(*it.SubgroupID))
		}
		items[itemKey{it.ItemID, it.GeoID}] = true
	}

	for _, ss := range snap.SingleScores {
		if !items[itemKey{ss.ItemID, ss.GeoID}] {
			missing("item", fmt.Sprintf("%s (geo %d)", ss.ItemID, ss.GeoID))
		}
		if !schemes[ss.SchemeID] {
			missing("weighting scheme", fmt.Sprint(ss.SchemeID))
		}
		if ss.Score != nil {
			_, err := lcia.NewLCIAValue(*ss.Score)
			add(err, "singlescores "+ss.ItemID)
		}
	}
	for _, wr := range snap.WeightedResults {
		if !items[itemKey{wr.ItemID, wr.GeoID}] {
			missing("item", fmt.Sprintf("%s (geo %d)", wr.ItemID, wr.GeoID))
		}
		if !categories[wr.ICID] {
			missing("impact category", fmt.Sprint(wr.ICID))
		}
		if !stages[wr.StageID] {
			missing("life cycle stage", fmt.Sprint(wr.StageID))
		}
		if !schemes[wr.SchemeID] {
			missing("weighting scheme", fmt.Sprint(wr.SchemeID))
		}
		if wr.Value != nil {
			_, err := lcia.NewLCIAValue(*wr.Value)
			add(err, "weightedresults "+wr.ItemID)
		}
	}

	return errs.ErrorOrNil()
}
