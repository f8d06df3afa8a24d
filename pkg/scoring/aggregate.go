package scoring

import "github.com/fitscore/fitscore/pkg/lcia"

// ItemInput is everything the aggregator needs for one item: the raw
// weighted values keyed by (category, stage) and the item's single score,
// which comes pre-aggregated from a separate source.
type ItemInput struct {
	ItemID      lcia.ItemID
	GeoID       lcia.GeoID
	SchemeID    lcia.WeightingSchemeID
	ProxyFlag   bool
	Values      map[lcia.Pair]lcia.LCIAValue
	SingleScore lcia.LCIAValue
}

// BuildItemResult reduces an item's raw values into stage totals, category
// totals and contributor counts. Every selected stage and category starts at
// zero; values for pairs outside the selection are ignored. All required
// pairs without a value are reported together in a MissingValuesError.
//
// The single score is carried through unchanged and never compared to the
// sum of the category totals.
func BuildItemResult(in ItemInput, sel Selection) (*lcia.LCIAResult, error) {
	if missing := sel.Required.Missing(in.Values); len(missing) > 0 {
		return nil, &lcia.MissingValuesError{
			ItemID:   in.ItemID,
			GeoID:    in.GeoID,
			SchemeID: in.SchemeID,
			Pairs:    missing,
		}
	}
	if _, err := lcia.NewLCIAValue(float64(in.SingleScore)); err != nil {
		return nil, err
	}

	res := &lcia.LCIAResult{
		ItemID:               in.ItemID,
		GeoID:                in.GeoID,
		ProxyFlag:            in.ProxyFlag,
		SingleScore:          in.SingleScore,
		StageValues:          make(map[lcia.LCStageID]lcia.LCIAValue, len(sel.Stages)),
		ImpactCategoryValues: make(map[lcia.ImpactCategoryID]lcia.LCIAValue, len(sel.Categories)),
		ICNormalization:      make(map[lcia.LCStageID]int, len(sel.Stages)),
		LCNormalization:      make(map[lcia.ImpactCategoryID]int, len(sel.Categories)),
	}
	for _, s := range sel.Stages {
		res.StageValues[s] = 0
		res.ICNormalization[s] = 0
	}
	for _, c := range sel.Categories {
		res.ImpactCategoryValues[c] = 0
		res.LCNormalization[c] = 0
	}

	for _, p := range sel.Required.Sorted() {
		v := in.Values[p]
		if _, err := lcia.NewLCIAValue(float64(v)); err != nil {
			return nil, err
		}
		if _, ok := res.StageValues[p.Stage]; ok {
			res.StageValues[p.Stage] += v
			res.ICNormalization[p.Stage]++
		}
		if _, ok := res.ImpactCategoryValues[p.Category]; ok {
			res.ImpactCategoryValues[p.Category] += v
			res.LCNormalization[p.Category]++
		}
	}

	return res, nil
}
