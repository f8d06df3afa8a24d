package scoring_test

import (
	"testing"

	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
)

func TestSelectCombinations(t *testing.T) {
	tests := []struct {
		name       string
		categories []lcia.ImpactCategoryID
		stages     []lcia.LCStageID
		want       []lcia.Pair
	}{
		{
			name:       "cartesian product",
			categories: []lcia.ImpactCategoryID{1, 2},
			stages:     []lcia.LCStageID{1, 2},
			want:       []lcia.Pair{{Category: 1, Stage: 1}, {Category: 1, Stage: 2}, {Category: 2, Stage: 1}, {Category: 2, Stage: 2}},
		},
		{
			name:       "biodiversity only at agriculture",
			categories: []lcia.ImpactCategoryID{3, 17},
			stages:     []lcia.LCStageID{1, 4},
			want:       []lcia.Pair{{Category: 3, Stage: 1}, {Category: 3, Stage: 4}, {Category: 17, Stage: 1}},
		},
		{
			name:       "biodiversity without agriculture stage",
			categories: []lcia.ImpactCategoryID{17},
			stages:     []lcia.LCStageID{2, 5},
			want:       []lcia.Pair{{Category: 17, Stage: 1}},
		},
		{
			name:       "empty categories",
			categories: nil,
			stages:     []lcia.LCStageID{1},
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.SelectCombinations(tt.categories, tt.stages).Sorted()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pair %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewSelectionCopiesInputs(t *testing.T) {
	cats := []lcia.ImpactCategoryID{1, 2}
	sel := scoring.NewSelection(cats, []lcia.LCStageID{1})
	cats[0] = 9
	if sel.Categories[0] != 1 {
		t.Errorf("selection shares caller slice: got %d", sel.Categories[0])
	}
	if len(sel.Required) != 2 {
		t.Errorf("expected 2 required pairs, got %d", len(sel.Required))
	}
}
