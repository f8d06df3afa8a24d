// Package scoring implements the LCIA aggregation and grading engine.
// It selects the required impact-category/stage combinations for a scheme,
// aggregates raw weighted values per item, scales and grades them against
// scheme-wide bounds, and folds graded items into a recipe result.
package scoring

import "github.com/fitscore/fitscore/pkg/lcia"

// RecipeItem is one ingredient of a recipe request.
type RecipeItem struct {
	Key    lcia.ItemKey    `json:"key"`
	GeoID  lcia.GeoID      `json:"geo_id"`
	Amount lcia.ItemAmount `json:"amount_kg"`
}

// RecipeRequest asks for the assessment of a set of items under one scheme.
type RecipeRequest struct {
	Scheme lcia.Scheme  `json:"scheme"`
	Items  []RecipeItem `json:"items"`
}

// ItemAssessment is the graded result of one recipe item.
type ItemAssessment struct {
	Item   RecipeItem             `json:"item"`
	Result *lcia.GradedLCIAResult `json:"result"`
}

// Assessment is the complete output of scoring a recipe.
// Immutable once computed.
type Assessment struct {
	ID          string                 `json:"id"`
	Scheme      lcia.Scheme            `json:"scheme"`
	Items       []ItemAssessment       `json:"items"` // request order
	Recipe      *lcia.GradedLCIAResult `json:"recipe"`
	TotalMassKg float64                `json:"total_mass_kg"`
}

// ContainsProxy reports whether any item relied on proxy data.
func (a *Assessment) ContainsProxy() bool {
	return a.Recipe != nil && a.Recipe.ContainsProxy
}
