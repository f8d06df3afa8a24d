package lcia

import (
	"fmt"
	"sort"
)

// Pair is one (impact category, life-cycle stage) combination.
type Pair struct {
	Category ImpactCategoryID `json:"ic_id"`
	Stage    LCStageID        `json:"lc_stage_id"`
}

func (p Pair) String() string { return fmt.Sprintf("(%d,%d)", p.Category, p.Stage) }

// Less orders pairs by category, then stage.
func (p Pair) Less(o Pair) bool {
	if p.Category != o.Category {
		return p.Category < o.Category
	}
	return p.Stage < o.Stage
}

// PairSet is a set of required combinations.
type PairSet map[Pair]struct{}

// NewPairSet builds a set from the given pairs.
func NewPairSet(pairs ...Pair) PairSet {
	s := make(PairSet, len(pairs))
	for _, p := range pairs {
		s[p] = struct{}{}
	}
	return s
}

// Contains reports whether p is in the set.
func (s PairSet) Contains(p Pair) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the pairs in ascending order.
func (s PairSet) Sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Categories returns the distinct categories in the set, ascending.
func (s PairSet) Categories() []ImpactCategoryID {
	seen := make(map[ImpactCategoryID]bool)
	var out []ImpactCategoryID
	for p := range s {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Stages returns the distinct stages in the set, ascending.
func (s PairSet) Stages() []LCStageID {
	seen := make(map[LCStageID]bool)
	var out []LCStageID
	for p := range s {
		if !seen[p.Stage] {
			seen[p.Stage] = true
			out = append(out, p.Stage)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Missing returns the required pairs absent from values, ascending.
func (s PairSet) Missing(values map[Pair]LCIAValue) []Pair {
	var out []Pair
	for _, p := range s.Sorted() {
		if _, ok := values[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// LCIAResult is the unscaled aggregate of one item under one scheme.
// ICNormalization[s] counts the categories that contributed to stage s;
// LCNormalization[c] counts the stages that contributed to category c.
// Immutable once built.
type LCIAResult struct {
	ItemID               ItemID                         `json:"item_id"`
	GeoID                GeoID                          `json:"geo_id"`
	ProxyFlag            bool                           `json:"proxy_flag"`
	SingleScore          LCIAValue                      `json:"single_score"`
	StageValues          map[LCStageID]LCIAValue        `json:"stage_values"`
	ImpactCategoryValues map[ImpactCategoryID]LCIAValue `json:"impact_category_values"`
	ICNormalization      map[LCStageID]int              `json:"ic_normalization"`
	LCNormalization      map[ImpactCategoryID]int       `json:"lc_normalization"`
}

// Bounds is the scaling range of one dimension.
type Bounds struct {
	Min LCIAValue `json:"min"`
	Max LCIAValue `json:"max"`
}

// MinMaxValues holds the scheme-wide scaling bounds, computed from non-proxy
// items only.
type MinMaxValues struct {
	SchemeID    WeightingSchemeID           `json:"scheme_id"`
	SingleScore Bounds                      `json:"single_score"`
	Categories  map[ImpactCategoryID]Bounds `json:"impact_categories"`
	Stages      map[LCStageID]Bounds        `json:"stages"`
}

// Validate checks that every bound pair satisfies min < max.
func (m *MinMaxValues) Validate() error {
	if m == nil {
		return &BoundsError{Dimension: "all", Reason: "no bounds supplied"}
	}
	if err := m.check("single score", m.SingleScore); err != nil {
		return err
	}
	cats := make([]ImpactCategoryID, 0, len(m.Categories))
	for id := range m.Categories {
		cats = append(cats, id)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, id := range cats {
		if err := m.check(fmt.Sprintf("impact category %d", id), m.Categories[id]); err != nil {
			return err
		}
	}
	stages := make([]LCStageID, 0, len(m.Stages))
	for id := range m.Stages {
		stages = append(stages, id)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })
	for _, id := range stages {
		if err := m.check(fmt.Sprintf("life cycle stage %d", id), m.Stages[id]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MinMaxValues) check(dim string, b Bounds) error {
	if b.Min < 0 {
		return &BoundsError{SchemeID: m.SchemeID, Dimension: dim, Min: b.Min, Max: b.Max, Reason: "min is negative"}
	}
	if b.Min >= b.Max {
		return &BoundsError{SchemeID: m.SchemeID, Dimension: dim, Min: b.Min, Max: b.Max}
	}
	return nil
}

// GradedLCIAResult is a scaled and graded result. ItemID and GeoID are set
// for per-item results and nil for the recipe-level result.
type GradedLCIAResult struct {
	ItemID               *ItemID                          `json:"item_id,omitempty"`
	GeoID                *GeoID                           `json:"geo_id,omitempty"`
	ContainsProxy        bool                             `json:"contains_proxy"`
	SingleScore          GradedValue                      `json:"single_score"`
	StageValues          map[LCStageID]GradedValue        `json:"stage_values"`
	ImpactCategoryValues map[ImpactCategoryID]GradedValue `json:"impact_category_values"`
}
