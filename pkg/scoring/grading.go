package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/fitscore/fitscore/pkg/lcia"
)

// LogScale applies log min-max scaling with a +1 shift (so zero is defined)
// and divides by sqrt(normalization), which discounts aggregates summed over
// fewer contributing dimensions. Callers must clamp value into [min,max].
func LogScale(value, min, max lcia.LCIAValue, normalization int) float64 {
	lv := math.Log(float64(value) + 1)
	lmin := math.Log(float64(min) + 1)
	lmax := math.Log(float64(max) + 1)
	scaled := (lv - lmin) / (lmax - lmin)
	return scaled / math.Sqrt(float64(normalization))
}

// Truncate clamps a raw value into [min,max]. Bounds come from non-proxy
// items only, so proxy values may fall outside them.
func Truncate(value, min, max lcia.LCIAValue) lcia.LCIAValue {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Grade scales and grades an item result against the scheme-wide bounds.
// The single score uses normalization 1, each stage the number of categories
// that contributed to it, and each category the number of stages.
// Raw values are truncated into their bounds before scaling; the graded
// value keeps the original raw value.
func Grade(result *lcia.LCIAResult, bounds *lcia.MinMaxValues) (*lcia.GradedLCIAResult, error) {
	if result == nil {
		return nil, fmt.Errorf("result is nil")
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	itemID := result.ItemID
	geoID := result.GeoID
	graded := &lcia.GradedLCIAResult{
		ItemID:               &itemID,
		GeoID:                &geoID,
		ContainsProxy:        result.ProxyFlag,
		StageValues:          make(map[lcia.LCStageID]lcia.GradedValue, len(result.StageValues)),
		ImpactCategoryValues: make(map[lcia.ImpactCategoryID]lcia.GradedValue, len(result.ImpactCategoryValues)),
	}

	ss, err := gradeValue(result, "single score", result.SingleScore, bounds.SingleScore, 1)
	if err != nil {
		return nil, err
	}
	graded.SingleScore = ss

	stages := make([]lcia.LCStageID, 0, len(result.StageValues))
	for id := range result.StageValues {
		stages = append(stages, id)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })
	for _, id := range stages {
		b, ok := bounds.Stages[id]
		if !ok {
			return nil, &lcia.BoundsError{SchemeID: bounds.SchemeID, Dimension: fmt.Sprintf("life cycle stage %d", id), Reason: "no bounds"}
		}
		gv, err := gradeValue(result, fmt.Sprintf("life cycle stage %d", id), result.StageValues[id], b, result.ICNormalization[id])
		if err != nil {
			return nil, err
		}
		graded.StageValues[id] = gv
	}

	cats := make([]lcia.ImpactCategoryID, 0, len(result.ImpactCategoryValues))
	for id := range result.ImpactCategoryValues {
		cats = append(cats, id)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, id := range cats {
		b, ok := bounds.Categories[id]
		if !ok {
			return nil, &lcia.BoundsError{SchemeID: bounds.SchemeID, Dimension: fmt.Sprintf("impact category %d", id), Reason: "no bounds"}
		}
		gv, err := gradeValue(result, fmt.Sprintf("impact category %d", id), result.ImpactCategoryValues[id], b, result.LCNormalization[id])
		if err != nil {
			return nil, err
		}
		graded.ImpactCategoryValues[id] = gv
	}

	return graded, nil
}

func gradeValue(result *lcia.LCIAResult, dim string, raw lcia.LCIAValue, b lcia.Bounds, normalization int) (lcia.GradedValue, error) {
	if normalization < 1 {
		return lcia.GradedValue{}, &lcia.ValidationError{
			Field:  "normalization",
			Value:  normalization,
			Reason: fmt.Sprintf("%s of item %s, geo %d has no contributing values", dim, result.ItemID, result.GeoID),
		}
	}
	scaled := LogScale(Truncate(raw, b.Min, b.Max), b.Min, b.Max, normalization)
	gv, err := lcia.NewGradedValue(raw, scaled)
	if err != nil {
		return lcia.GradedValue{}, fmt.Errorf("grading %s of item %s, geo %d (value=%g, min=%g, max=%g, normalization=%d): %w",
			dim, result.ItemID, result.GeoID, raw, b.Min, b.Max, normalization, err)
	}
	return gv, nil
}
