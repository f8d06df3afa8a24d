// Package surface renders recipe assessments. The JSON form is the public
// response shape of the calculate-recipe endpoint; the terminal and
// Markdown forms are for people.
package surface

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
)

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *Report) error
}

// Names maps dimension ids to display names. Stage and category names are
// required; product and country names are optional.
type Names struct {
	Stages     map[lcia.LCStageID]string
	Categories map[lcia.ImpactCategoryID]string
	Products   map[lcia.ItemKey]string
	Countries  map[lcia.GeoID]string
}

// Report is a rendered assessment keyed by display names.
type Report struct {
	RecipeInfo  RecipeInfo            `json:"Recipe Info"`
	ItemResults map[string]ItemResult `json:"Item Results"`

	itemOrder  []string
	stageOrder []string
	catOrder   []string
}

// RecipeInfo is the recipe-level part of a report.
type RecipeInfo struct {
	GeneralInfo      GeneralInfo           `json:"General Info"`
	SingleScore      ScoreEntry            `json:"Single Score"`
	Items            map[string]string     `json:"Items"`
	Stages           map[string]ValueEntry `json:"Stages"`
	ImpactCategories map[string]ValueEntry `json:"Impact Categories"`
}

type GeneralInfo struct {
	AssessmentID    string `json:"Assessment ID,omitempty"`
	WeightingScheme string `json:"Weighting Scheme"`
	ContainsProxy   bool   `json:"contains_proxy"`
	OverallMass     string `json:"Overall Mass"`
}

type ScoreEntry struct {
	SingleScore   float64 `json:"Single Score"`
	Grade         string  `json:"Grade"`
	ScaledValue   float64 `json:"Scaled Value"`
	ContainsProxy *bool   `json:"contains_proxy,omitempty"` // items only
}

type ValueEntry struct {
	LCIAValue   float64 `json:"lcia_value"`
	Grade       string  `json:"Grade"`
	ScaledValue float64 `json:"Scaled Value"`
}

// ItemResult is the part of a report describing one recipe item.
type ItemResult struct {
	ProductName      string                `json:"product_name,omitempty"`
	Country          string                `json:"country,omitempty"`
	SingleScore      ScoreEntry            `json:"Single Score"`
	Stages           map[string]ValueEntry `json:"Stages"`
	ImpactCategories map[string]ValueEntry `json:"Impact Categories"`
}

// NewReport builds the report of a, naming dimensions with names.
func NewReport(a *scoring.Assessment, names Names) (*Report, error) {
	if a == nil || a.Recipe == nil {
		return nil, fmt.Errorf("assessment has no recipe result")
	}
	r := &Report{
		RecipeInfo: RecipeInfo{
			GeneralInfo: GeneralInfo{
				AssessmentID:    a.ID,
				WeightingScheme: string(a.Scheme.Name),
				ContainsProxy:   a.ContainsProxy(),
				OverallMass:     kg(a.TotalMassKg),
			},
			SingleScore: scoreEntry(a.Recipe.SingleScore, nil),
			Items:       make(map[string]string, len(a.Items)),
		},
		ItemResults: make(map[string]ItemResult, len(a.Items)),
	}

	var err error
	r.RecipeInfo.Stages, r.stageOrder, err = stageEntries(a.Recipe.StageValues, names)
	if err != nil {
		return nil, err
	}
	r.RecipeInfo.ImpactCategories, r.catOrder, err = categoryEntries(a.Recipe.ImpactCategoryValues, names)
	if err != nil {
		return nil, err
	}

	for _, ia := range a.Items {
		key := ia.Item.Key.String()
		if _, dup := r.ItemResults[key]; dup {
			return nil, &lcia.ValidationError{Field: "recipe item", Value: key, Reason: "listed more than once"}
		}
		proxy := ia.Result.ContainsProxy
		stages, _, err := stageEntries(ia.Result.StageValues, names)
		if err != nil {
			return nil, err
		}
		cats, _, err := categoryEntries(ia.Result.ImpactCategoryValues, names)
		if err != nil {
			return nil, err
		}
		r.RecipeInfo.Items[key] = kg(float64(ia.Item.Amount))
		r.ItemResults[key] = ItemResult{
			ProductName:      names.Products[ia.Item.Key],
			Country:          names.Countries[ia.Item.GeoID],
			SingleScore:      scoreEntry(ia.Result.SingleScore, &proxy),
			Stages:           stages,
			ImpactCategories: cats,
		}
		r.itemOrder = append(r.itemOrder, key)
	}
	return r, nil
}

func kg(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + " kg" }

func scoreEntry(v lcia.GradedValue, proxy *bool) ScoreEntry {
	return ScoreEntry{SingleScore: float64(v.Raw), Grade: string(v.Grade), ScaledValue: v.Scaled, ContainsProxy: proxy}
}

func valueEntry(v lcia.GradedValue) ValueEntry {
	return ValueEntry{LCIAValue: float64(v.Raw), Grade: string(v.Grade), ScaledValue: v.Scaled}
}

func stageEntries(values map[lcia.LCStageID]lcia.GradedValue, names Names) (map[string]ValueEntry, []string, error) {
	ids := make([]lcia.LCStageID, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[string]ValueEntry, len(values))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := names.Stages[id]
		if !ok {
			return nil, nil, &lcia.NotFoundError{Kind: "life cycle stage name", Key: strconv.Itoa(int(id))}
		}
		out[name] = valueEntry(values[id])
		order = append(order, name)
	}
	return out, order, nil
}

func categoryEntries(values map[lcia.ImpactCategoryID]lcia.GradedValue, names Names) (map[string]ValueEntry, []string, error) {
	ids := make([]lcia.ImpactCategoryID, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[string]ValueEntry, len(values))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := names.Categories[id]
		if !ok {
			return nil, nil, &lcia.NotFoundError{Kind: "impact category name", Key: strconv.Itoa(int(id))}
		}
		out[name] = valueEntry(values[id])
		order = append(order, name)
	}
	return out, order, nil
}

// ordered returns the keys of m in the given order, falling back to sorted
// keys for a report that was decoded rather than built.
func ordered[V any](m map[string]V, order []string) []string {
	if len(order) == len(m) {
		return order
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
