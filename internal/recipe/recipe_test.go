package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
)

type fakeCatalog struct {
	geoCalls  map[string]int
	nameCalls map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{geoCalls: map[string]int{}, nameCalls: map[string]int{}}
}

func (c *fakeCatalog) GeoByCountry(_ context.Context, iso3 string) (lcia.GeoID, error) {
	c.geoCalls[iso3]++
	switch iso3 {
	case "FRA":
		return 1, nil
	case "DEU":
		return 2, nil
	}
	return 0, &lcia.NotFoundError{Kind: "geography", Key: iso3}
}

func (c *fakeCatalog) ResolveScheme(_ context.Context, name string, id int) (lcia.Scheme, error) {
	if name == "" && id == 0 {
		return lcia.Scheme{ID: 1, Name: lcia.DefaultScheme}, nil
	}
	return lcia.Scheme{}, &lcia.NotFoundError{Kind: "weighting scheme", Key: name}
}

func (c *fakeCatalog) Name(_ context.Context, ref lcia.NameRef) (string, error) {
	c.nameCalls[ref.Kind()+":"+ref.Key()]++
	switch r := ref.(type) {
	case lcia.StageRef:
		if name, ok := map[lcia.LCStageID]string{1: "Agriculture", 2: "Processing"}[r.ID]; ok {
			return name, nil
		}
	case lcia.CategoryRef:
		if name, ok := map[lcia.ImpactCategoryID]string{1: "Climate change", 17: "Biodiversity"}[r.ID]; ok {
			return name, nil
		}
	case lcia.GeoRef:
		if name, ok := map[lcia.GeoID]string{1: "France", 2: "Germany"}[r.ID]; ok {
			return name, nil
		}
	case lcia.ItemRef:
		if name, ok := map[lcia.ItemID]string{"20134": "Beef, minced", "24070": "Leek, raw"}[r.ID]; ok {
			return name, nil
		}
	}
	return "", &lcia.NotFoundError{Kind: ref.Kind() + " name", Key: ref.Key()}
}

func TestBuildRequest(t *testing.T) {
	c := newFakeCatalog()
	req, err := BuildRequest(context.Background(), c, map[string]float64{
		"24070-FRA": 0.5,
		"20134-FRA": 1.2,
		"20134-DEU": 0.3,
	}, "", 0)
	if err != nil {
		t.Fatalf("BuildRequest() error: %v", err)
	}
	if req.Scheme.ID != 1 {
		t.Errorf("expected default scheme, got %v", req.Scheme)
	}
	want := []string{"20134-DEU", "20134-FRA", "24070-FRA"}
	if len(req.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(req.Items))
	}
	for i, k := range want {
		if got := req.Items[i].Key.String(); got != k {
			t.Errorf("item %d: expected %s, got %s", i, k, got)
		}
	}
	if req.Items[0].GeoID != 2 || req.Items[1].GeoID != 1 {
		t.Errorf("unexpected geographies: %+v", req.Items)
	}
	if c.geoCalls["FRA"] != 1 {
		t.Errorf("FRA should be resolved once, got %d lookups", c.geoCalls["FRA"])
	}
}

func TestBuildRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		amounts map[string]float64
		scheme  string
		wantErr error
	}{
		{name: "empty", amounts: map[string]float64{}, wantErr: lcia.ErrInvalidValue},
		{name: "bad key", amounts: map[string]float64{"20134": 1}, wantErr: lcia.ErrInvalidValue},
		{name: "zero amount", amounts: map[string]float64{"20134-FRA": 0}, wantErr: lcia.ErrInvalidValue},
		{name: "unknown country", amounts: map[string]float64{"20134-XXX": 1}, wantErr: lcia.ErrNotFound},
		{name: "unknown scheme", amounts: map[string]float64{"20134-FRA": 1}, scheme: "nope", wantErr: lcia.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRequest(context.Background(), newFakeCatalog(), tt.amounts, tt.scheme, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func graded(scaled float64) *lcia.GradedLCIAResult {
	v := lcia.GradedValue{Raw: lcia.LCIAValue(scaled * 10), Scaled: scaled, Grade: lcia.GradeFromScaled(scaled)}
	return &lcia.GradedLCIAResult{
		SingleScore:          v,
		StageValues:          map[lcia.LCStageID]lcia.GradedValue{1: v, 2: v},
		ImpactCategoryValues: map[lcia.ImpactCategoryID]lcia.GradedValue{1: v, 17: v},
	}
}

func assessment(keys ...lcia.ItemKey) *scoring.Assessment {
	a := &scoring.Assessment{ID: "a1", Scheme: lcia.Scheme{ID: 1, Name: lcia.DefaultScheme}, Recipe: graded(0.4)}
	for _, k := range keys {
		a.Items = append(a.Items, scoring.ItemAssessment{
			Item:   scoring.RecipeItem{Key: k, GeoID: 1, Amount: 1},
			Result: graded(0.4),
		})
		a.TotalMassKg++
	}
	return a
}

func TestBuildReport(t *testing.T) {
	c := newFakeCatalog()
	beef := lcia.ItemKey{ItemID: "20134", Country: "FRA"}
	leek := lcia.ItemKey{ItemID: "24070", Country: "FRA"}

	report, err := BuildReport(context.Background(), c, assessment(beef, leek))
	if err != nil {
		t.Fatalf("BuildReport() error: %v", err)
	}
	it, ok := report.ItemResults["20134-FRA"]
	if !ok {
		t.Fatalf("missing item result, got %v", report.ItemResults)
	}
	if it.ProductName != "Beef, minced" || it.Country != "France" {
		t.Errorf("unexpected item names: %q, %q", it.ProductName, it.Country)
	}
	if _, ok := report.RecipeInfo.Stages["Processing"]; !ok {
		t.Errorf("expected named stages, got %v", report.RecipeInfo.Stages)
	}
	if _, ok := report.RecipeInfo.ImpactCategories["Biodiversity"]; !ok {
		t.Errorf("expected named categories, got %v", report.RecipeInfo.ImpactCategories)
	}
	for key, n := range c.nameCalls {
		if n != 1 {
			t.Errorf("%s looked up %d times", key, n)
		}
	}
}

func TestBuildReportUnknownName(t *testing.T) {
	unknown := lcia.ItemKey{ItemID: "99999", Country: "FRA"}
	_, err := BuildReport(context.Background(), newFakeCatalog(), assessment(unknown))
	if !errors.Is(err, lcia.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryNames(t *testing.T) {
	c := newFakeCatalog()
	names, err := CategoryNames(context.Background(), c, []lcia.ImpactCategoryID{17, 1, 17})
	if err != nil {
		t.Fatalf("CategoryNames() error: %v", err)
	}
	if names[17] != "Biodiversity" || len(names) != 2 {
		t.Errorf("unexpected names %v", names)
	}
	if c.nameCalls["impact category:17"] != 1 {
		t.Errorf("duplicate ids should be looked up once, got %d", c.nameCalls["impact category:17"])
	}
	if _, err := StageNames(context.Background(), c, []lcia.LCStageID{1, 6}); !errors.Is(err, lcia.ErrNotFound) {
		t.Errorf("unknown stage: expected ErrNotFound, got %v", err)
	}
}
