package scoring

import (
	"fmt"
	"math"

	"github.com/fitscore/fitscore/pkg/lcia"
)

// CombineScaled folds scaled values with a renormalized Euclidean norm,
// sqrt(sum(s^2))/sqrt(n). A set of equal values folds to that value.
func CombineScaled(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v * v
	}
	return math.Sqrt(sum) / math.Sqrt(float64(len(values)))
}

// CombineRecipe folds graded item results into one recipe-level result.
// For every dimension the scaled values are combined with CombineScaled over
// the items supplying that dimension, raw values are summed and the grade is
// derived from the combined scaled value. The recipe relies on proxy data if
// any item does.
func CombineRecipe(results []*lcia.GradedLCIAResult) (*lcia.GradedLCIAResult, error) {
	return combine(results, nil)
}

// CombineRecipeWeighted is CombineRecipe with each item's raw values
// multiplied by its amount in kilograms. Scaled values, and so grades, are
// combined exactly as in CombineRecipe.
func CombineRecipeWeighted(results []*lcia.GradedLCIAResult, amounts []lcia.ItemAmount) (*lcia.GradedLCIAResult, error) {
	if len(amounts) != len(results) {
		return nil, fmt.Errorf("got %d amounts for %d results", len(amounts), len(results))
	}
	return combine(results, amounts)
}

type accumulator struct {
	raw    lcia.LCIAValue
	scaled []float64
}

func (a *accumulator) add(v lcia.GradedValue, factor float64) {
	a.raw += lcia.LCIAValue(float64(v.Raw) * factor)
	a.scaled = append(a.scaled, v.Scaled)
}

func (a *accumulator) value() (lcia.GradedValue, error) {
	return lcia.NewGradedValue(a.raw, CombineScaled(a.scaled...))
}

func combine(results []*lcia.GradedLCIAResult, amounts []lcia.ItemAmount) (*lcia.GradedLCIAResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("cannot combine an empty recipe")
	}

	var (
		proxy  bool
		single accumulator
		stages = make(map[lcia.LCStageID]*accumulator)
		cats   = make(map[lcia.ImpactCategoryID]*accumulator)
	)
	for i, r := range results {
		if r == nil {
			return nil, fmt.Errorf("result %d is nil", i)
		}
		factor := 1.0
		if amounts != nil {
			factor = float64(amounts[i])
		}
		proxy = proxy || r.ContainsProxy
		single.add(r.SingleScore, factor)
		for id, v := range r.StageValues {
			acc, ok := stages[id]
			if !ok {
				acc = &accumulator{}
				stages[id] = acc
			}
			acc.add(v, factor)
		}
		for id, v := range r.ImpactCategoryValues {
			acc, ok := cats[id]
			if !ok {
				acc = &accumulator{}
				cats[id] = acc
			}
			acc.add(v, factor)
		}
	}

	out := &lcia.GradedLCIAResult{
		ContainsProxy:        proxy,
		StageValues:          make(map[lcia.LCStageID]lcia.GradedValue, len(stages)),
		ImpactCategoryValues: make(map[lcia.ImpactCategoryID]lcia.GradedValue, len(cats)),
	}
	var err error
	if out.SingleScore, err = single.value(); err != nil {
		return nil, fmt.Errorf("combining single score: %w", err)
	}
	for id, acc := range stages {
		if out.StageValues[id], err = acc.value(); err != nil {
			return nil, fmt.Errorf("combining life cycle stage %d: %w", id, err)
		}
	}
	for id, acc := range cats {
		if out.ImpactCategoryValues[id], err = acc.value(); err != nil {
			return nil, fmt.Errorf("combining impact category %d: %w", id, err)
		}
	}
	return out, nil
}
