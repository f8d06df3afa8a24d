package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/fitscore/fitscore/pkg/lcia"
)

// DataSource supplies the precomputed LCIA data the engine scores against.
type DataSource interface {
	// CategoryWeights returns the category weights of a scheme.
	CategoryWeights(ctx context.Context, scheme lcia.WeightingSchemeID) (lcia.Weights, error)
	// MinMax returns the scaling bounds for the selection, taken over
	// non-proxy items.
	MinMax(ctx context.Context, scheme lcia.WeightingSchemeID, sel Selection) (*lcia.MinMaxValues, error)
	// WeightedValues returns whatever values exist for the requested pairs.
	// Absent pairs are simply left out of the map.
	WeightedValues(ctx context.Context, item lcia.ItemID, geo lcia.GeoID, scheme lcia.WeightingSchemeID, pairs lcia.PairSet) (map[lcia.Pair]lcia.LCIAValue, error)
	// SingleScore returns the item's single score; ok is false when none exists.
	SingleScore(ctx context.Context, item lcia.ItemID, geo lcia.GeoID, scheme lcia.WeightingSchemeID) (score lcia.LCIAValue, ok bool, err error)
	// ProxyFlag reports whether the item's data is a proxy.
	ProxyFlag(ctx context.Context, item lcia.ItemID, geo lcia.GeoID) (bool, error)
}

// Plan is the scheme-wide state shared by every item of a run.
type Plan struct {
	Scheme    lcia.WeightingSchemeID
	Selection Selection
	Bounds    *lcia.MinMaxValues
}

// PlanCache keeps prepared plans between runs. Bounds only change when the
// dataset does, so callers that own the dataset lifecycle may share plans.
type PlanCache interface {
	Get(scheme lcia.WeightingSchemeID) *Plan
	Put(scheme lcia.WeightingSchemeID, plan *Plan)
}

// Engine scores items and recipes against a DataSource.
type Engine struct {
	source DataSource
	opts   Options
	cache  PlanCache
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStages overrides the scored life cycle stages.
func WithStages(stages ...lcia.LCStageID) Option {
	return func(e *Engine) { e.opts.Stages = append([]lcia.LCStageID(nil), stages...) }
}

// WithWorkers bounds item concurrency. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.opts.Workers = n
		}
	}
}

// WithAmountWeighting enables mass-weighted raw values in recipe results.
func WithAmountWeighting(on bool) Option {
	return func(e *Engine) { e.opts.WeightByAmount = on }
}

// WithOptions replaces all options at once.
func WithOptions(o Options) Option {
	return func(e *Engine) {
		WithStages(o.Stages...)(e)
		WithWorkers(o.Workers)(e)
		e.opts.WeightByAmount = o.WeightByAmount
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPlanCache reuses prepared plans across runs.
func WithPlanCache(c PlanCache) Option {
	return func(e *Engine) { e.cache = c }
}

// NewEngine creates an engine reading from source.
func NewEngine(source DataSource, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		opts:   Defaults(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Prepare resolves the scheme's categories and loads its bounds.
func (e *Engine) Prepare(ctx context.Context, scheme lcia.WeightingSchemeID) (*Plan, error) {
	weights, err := e.source.CategoryWeights(ctx, scheme)
	if err != nil {
		return nil, lcia.Classify("loading category weights", err)
	}
	if len(e.opts.Stages) == 0 {
		return nil, &lcia.ValidationError{Field: "stages", Value: "[]", Reason: "at least one life cycle stage is required"}
	}
	sel := NewSelection(weights.Categories(), e.opts.Stages)
	if len(sel.Categories) == 0 {
		return nil, &lcia.ValidationError{Field: "weights", Value: scheme, Reason: "scheme has no weighted impact categories"}
	}

	bounds, err := e.source.MinMax(ctx, scheme, sel)
	if err != nil {
		return nil, lcia.Classify("loading min/max bounds", err)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Plan{Scheme: scheme, Selection: sel, Bounds: bounds}, nil
}

func (e *Engine) plan(ctx context.Context, scheme lcia.WeightingSchemeID) (*Plan, error) {
	if e.cache != nil {
		if p := e.cache.Get(scheme); p != nil {
			return p, nil
		}
	}
	p, err := e.Prepare(ctx, scheme)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Put(scheme, p)
	}
	return p, nil
}

// AssessItem aggregates and grades a single item.
func (e *Engine) AssessItem(ctx context.Context, scheme lcia.WeightingSchemeID, item lcia.ItemID, geo lcia.GeoID) (*lcia.GradedLCIAResult, error) {
	plan, err := e.plan(ctx, scheme)
	if err != nil {
		return nil, err
	}
	return e.AssessWithPlan(ctx, plan, item, geo)
}

// AssessWithPlan aggregates and grades one item under a prepared plan.
func (e *Engine) AssessWithPlan(ctx context.Context, plan *Plan, item lcia.ItemID, geo lcia.GeoID) (*lcia.GradedLCIAResult, error) {
	values, err := e.source.WeightedValues(ctx, item, geo, plan.Scheme, plan.Selection.Required)
	if err != nil {
		return nil, lcia.Classify("loading weighted values", err)
	}
	score, found, err := e.source.SingleScore(ctx, item, geo, plan.Scheme)
	if err != nil {
		return nil, lcia.Classify("loading single score", err)
	}
	proxy, err := e.source.ProxyFlag(ctx, item, geo)
	if err != nil {
		return nil, lcia.Classify("loading proxy flag", err)
	}

	result, err := BuildItemResult(ItemInput{
		ItemID:      item,
		GeoID:       geo,
		SchemeID:    plan.Scheme,
		ProxyFlag:   proxy,
		Values:      values,
		SingleScore: score,
	}, plan.Selection)
	if !found {
		var missing *lcia.MissingValuesError
		switch {
		case err == nil:
			missing = &lcia.MissingValuesError{ItemID: item, GeoID: geo, SchemeID: plan.Scheme}
		case !errors.As(err, &missing):
			return nil, err
		}
		missing.SingleScore = true
		return nil, missing
	}
	if err != nil {
		return nil, err
	}

	graded, err := Grade(result, plan.Bounds)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("item graded",
		"item", item, "geo", geo, "scheme", plan.Scheme,
		"single_score", float64(graded.SingleScore.Raw), "grade", graded.SingleScore.Grade,
		"proxy", proxy)
	return graded, nil
}

// AssessRecipe grades every item of the request concurrently and folds the
// results into a recipe result. Missing values are collected across all
// items and returned together; any other failure aborts the run.
func (e *Engine) AssessRecipe(ctx context.Context, req RecipeRequest) (*Assessment, error) {
	if len(req.Items) == 0 {
		return nil, &lcia.ValidationError{Field: "items", Value: 0, Reason: "a recipe needs at least one item"}
	}
	plan, err := e.plan(ctx, req.Scheme.ID)
	if err != nil {
		return nil, err
	}

	graded := make([]*lcia.GradedLCIAResult, len(req.Items))
	missing := make([]error, len(req.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, it := range req.Items {
		g.Go(func() error {
			r, err := e.AssessWithPlan(gctx, plan, it.Key.ItemID, it.GeoID)
			if errors.Is(err, lcia.ErrMissingValue) {
				missing[i] = err
				return nil
			}
			if err != nil {
				return fmt.Errorf("assessing %s: %w", it.Key, err)
			}
			graded[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merr *multierror.Error
	for _, err := range missing {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	amounts := make([]lcia.ItemAmount, len(req.Items))
	var mass float64
	for i, it := range req.Items {
		amounts[i] = it.Amount
		mass += float64(it.Amount)
	}

	var recipe *lcia.GradedLCIAResult
	if e.opts.WeightByAmount {
		recipe, err = CombineRecipeWeighted(graded, amounts)
	} else {
		recipe, err = CombineRecipe(graded)
	}
	if err != nil {
		return nil, lcia.Classify("combining recipe", err)
	}

	a := &Assessment{
		ID:          uuid.NewString(),
		Scheme:      req.Scheme,
		Items:       make([]ItemAssessment, len(req.Items)),
		Recipe:      recipe,
		TotalMassKg: mass,
	}
	for i, it := range req.Items {
		a.Items[i] = ItemAssessment{Item: it, Result: graded[i]}
	}
	e.logger.Info("recipe assessed",
		"id", a.ID, "scheme", req.Scheme.Name, "items", len(req.Items),
		"grade", recipe.SingleScore.Grade, "proxy", recipe.ContainsProxy)
	return a, nil
}
