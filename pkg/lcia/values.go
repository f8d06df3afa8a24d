package lcia

import (
	"math"
	"sort"
)

// LCIAValue is a non-negative, finite impact value.
type LCIAValue float64

// NewLCIAValue validates v as an impact value.
func NewLCIAValue(v float64) (LCIAValue, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid("LCIA value", v, "must be finite")
	}
	if v < 0 {
		return 0, invalid("LCIA value", v, "must be non-negative")
	}
	return LCIAValue(v), nil
}

// ICWeight is the weight of one impact category within a scheme, in [0,1].
type ICWeight float64

// NewICWeight validates v as a category weight.
func NewICWeight(v float64) (ICWeight, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, invalid("impact category weight", v, "must be between 0 and 1")
	}
	return ICWeight(v), nil
}

// WeightSumTolerance is how far a scheme's weights may drift from 1.
const WeightSumTolerance = 1e-4

// Weights is the full weight set of one scheme.
type Weights map[ImpactCategoryID]ICWeight

// NewWeights validates that the set is non-empty and sums to 1 within
// WeightSumTolerance. The input map is copied.
func NewWeights(in map[ImpactCategoryID]ICWeight) (Weights, error) {
	if len(in) == 0 {
		return nil, invalid("weights", "{}", "must not be empty")
	}
	out := make(Weights, len(in))
	var sum float64
	for id, w := range in {
		if _, err := NewImpactCategoryID(int(id)); err != nil {
			return nil, err
		}
		if _, err := NewICWeight(float64(w)); err != nil {
			return nil, err
		}
		out[id] = w
		sum += float64(w)
	}
	if math.Abs(sum-1) > WeightSumTolerance {
		return nil, invalid("weights", sum, "must sum to one")
	}
	return out, nil
}

// Categories returns the categories carrying a non-zero weight, ascending.
func (w Weights) Categories() []ImpactCategoryID {
	var ids []ImpactCategoryID
	for id, v := range w {
		if v > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Grade is a letter from A (lowest impact) to E (highest).
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

// GradeFromScaled maps a scaled value to its grade. Intervals are half-open
// with the lower bound inclusive.
func GradeFromScaled(scaled float64) Grade {
	switch {
	case scaled >= 0.7:
		return GradeE
	case scaled >= 0.5:
		return GradeD
	case scaled >= 0.3:
		return GradeC
	case scaled >= 0.1:
		return GradeB
	default:
		return GradeA
	}
}

// GradedValue is a raw value together with its scaled value in [0,1] and
// the grade derived from it.
type GradedValue struct {
	Raw    LCIAValue `json:"lcia_value"`
	Scaled float64   `json:"scaled_value"`
	Grade  Grade     `json:"grade"`
}

// NewGradedValue validates scaled and derives the grade. An out-of-range
// scaled value points at a bounds defect upstream and is never clamped here.
func NewGradedValue(raw LCIAValue, scaled float64) (GradedValue, error) {
	if _, err := NewLCIAValue(float64(raw)); err != nil {
		return GradedValue{}, err
	}
	if math.IsNaN(scaled) || scaled < 0 || scaled > 1 {
		return GradedValue{}, invalid("scaled value", scaled, "must be between 0 and 1")
	}
	return GradedValue{Raw: raw, Scaled: scaled, Grade: GradeFromScaled(scaled)}, nil
}
