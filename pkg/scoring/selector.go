package scoring

import "github.com/fitscore/fitscore/pkg/lcia"

// SelectCombinations returns every (category, stage) pair required for a
// scoring run. Each category pairs with each stage, except biodiversity,
// which is defined only at the agriculture stage and yields exactly one pair
// regardless of the stages selected.
func SelectCombinations(categories []lcia.ImpactCategoryID, stages []lcia.LCStageID) lcia.PairSet {
	required := lcia.NewPairSet()
	for _, c := range categories {
		if c == lcia.BiodiversityCategory {
			required[lcia.Pair{Category: c, Stage: lcia.StageAgriculture}] = struct{}{}
			continue
		}
		for _, s := range stages {
			required[lcia.Pair{Category: c, Stage: s}] = struct{}{}
		}
	}
	return required
}

// Selection is the resolved dimension set of one scoring run.
type Selection struct {
	Categories []lcia.ImpactCategoryID
	Stages     []lcia.LCStageID
	Required   lcia.PairSet
}

// NewSelection resolves the required pairs for the given categories and stages.
func NewSelection(categories []lcia.ImpactCategoryID, stages []lcia.LCStageID) Selection {
	return Selection{
		Categories: append([]lcia.ImpactCategoryID(nil), categories...),
		Stages:     append([]lcia.LCStageID(nil), stages...),
		Required:   SelectCombinations(categories, stages),
	}
}
