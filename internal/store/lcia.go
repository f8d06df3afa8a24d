package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
)

var _ scoring.DataSource = (*Store)(nil)

// CategoryWeights returns the non-zero category weights of a scheme.
func (s *Store) CategoryWeights(ctx context.Context, scheme lcia.WeightingSchemeID) (lcia.Weights, error) {
	var rows []CategoryWeight
	err := s.selectAll(ctx, &rows,
		`SELECT scheme_id, ic_id, ic_weight
		 FROM impactcategoryweights
		 WHERE scheme_id = ? AND ic_weight > 0`,
		int(scheme),
	)
	if err != nil {
		return nil, fmt.Errorf("select weights for scheme %d: %w", scheme, err)
	}
	if len(rows) == 0 {
		return nil, &lcia.NotFoundError{Kind: "weights", Key: "scheme " + strconv.Itoa(int(scheme))}
	}

	raw := make(map[lcia.ImpactCategoryID]lcia.ICWeight, len(rows))
	for _, r := range rows {
		id, err := lcia.NewImpactCategoryID(r.ICID)
		if err != nil {
			return nil, err
		}
		w, err := lcia.NewICWeight(r.Weight)
		if err != nil {
			return nil, err
		}
		raw[id] = w
	}
	return lcia.NewWeights(raw)
}

type boundsRow struct {
	ID int             `db:"id"`
	Lo sql.NullFloat64 `db:"lo"`
	Hi sql.NullFloat64 `db:"hi"`
}

// MinMax computes the scaling bounds of a scheme over non-proxy items.
// Category and stage bounds range over the individual weighted values of the
// selected pairs; the single score bounds range over all single scores.
func (s *Store) MinMax(ctx context.Context, scheme lcia.WeightingSchemeID, sel scoring.Selection) (*lcia.MinMaxValues, error) {
	out := &lcia.MinMaxValues{
		SchemeID:   scheme,
		Categories: make(map[lcia.ImpactCategoryID]lcia.Bounds, len(sel.Categories)),
		Stages:     make(map[lcia.LCStageID]lcia.Bounds, len(sel.Stages)),
	}

	var single boundsRow
	err := s.get(ctx, &single,
		`SELECT 0 AS id, MIN(ss.single_score) AS lo, MAX(ss.single_score) AS hi
		 FROM singlescores ss
		 JOIN metadata m ON m.item_id = ss.item_id AND m.geo_id = ss.geo_id
		 WHERE ss.scheme_id = ? AND m.proxy_flag = ? AND ss.single_score IS NOT NULL`,
		int(scheme), false,
	)
	if err != nil {
		return nil, fmt.Errorf("select single score bounds: %w", err)
	}
	if !single.Lo.Valid || !single.Hi.Valid {
		return nil, &lcia.BoundsError{SchemeID: scheme, Dimension: "single score", Reason: "no non-proxy values"}
	}
	out.SingleScore = lcia.Bounds{Min: lcia.LCIAValue(single.Lo.Float64), Max: lcia.LCIAValue(single.Hi.Float64)}

	pairs, pairArgs := pairFilter(sel.Required)
	if pairs == "" {
		return out, nil
	}
	for _, dim := range []struct {
		column string
		assign func(id int, b lcia.Bounds)
	}{
		{"ic_id", func(id int, b lcia.Bounds) { out.Categories[lcia.ImpactCategoryID(id)] = b }},
		{"lc_stage_id", func(id int, b lcia.Bounds) { out.Stages[lcia.LCStageID(id)] = b }},
	} {
		query := `SELECT w.` + dim.column + ` AS id, MIN(w.weighted_value) AS lo, MAX(w.weighted_value) AS hi
		 FROM weightedresults w
		 JOIN metadata m ON m.item_id = w.item_id AND m.geo_id = w.geo_id
		 WHERE w.scheme_id = ? AND m.proxy_flag = ? AND w.weighted_value IS NOT NULL
		   AND (w.ic_id, w.lc_stage_id) IN (` + pairs + `)
		 GROUP BY w.` + dim.column
		args := append([]any{int(scheme), false}, pairArgs...)

		var rows []boundsRow
		if err := s.selectAll(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select %s bounds: %w", dim.column, err)
		}
		for _, r := range rows {
			if r.Lo.Valid && r.Hi.Valid {
				dim.assign(r.ID, lcia.Bounds{Min: lcia.LCIAValue(r.Lo.Float64), Max: lcia.LCIAValue(r.Hi.Float64)})
			}
		}
	}

	for _, c := range sel.Categories {
		if _, ok := out.Categories[c]; !ok {
			return nil, &lcia.BoundsError{SchemeID: scheme, Dimension: fmt.Sprintf("impact category %d", c), Reason: "no non-proxy values"}
		}
	}
	for _, st := range sel.Stages {
		if _, ok := out.Stages[st]; !ok {
			return nil, &lcia.BoundsError{SchemeID: scheme, Dimension: fmt.Sprintf("life cycle stage %d", st), Reason: "no non-proxy values"}
		}
	}
	return out, nil
}

// pairFilter renders the pairs as a row-value list "(?, ?), (?, ?)".
func pairFilter(set lcia.PairSet) (string, []any) {
	pairs := set.Sorted()
	parts := make([]string, len(pairs))
	args := make([]any, 0, 2*len(pairs))
	for i, p := range pairs {
		parts[i] = "(?, ?)"
		args = append(args, int(p.Category), int(p.Stage))
	}
	return strings.Join(parts, ", "), args
}

// WeightedValues returns the non-null weighted values of an item for the
// requested pairs.
func (s *Store) WeightedValues(ctx context.Context, item lcia.ItemID, geo lcia.GeoID, scheme lcia.WeightingSchemeID, pairs lcia.PairSet) (map[lcia.Pair]lcia.LCIAValue, error) {
	out := make(map[lcia.Pair]lcia.LCIAValue, len(pairs))
	if len(pairs) == 0 {
		return out, nil
	}
	query, args, err := s.in(
		`SELECT item_id, geo_id, ic_id, lc_stage_id, scheme_id, weighted_value
		 FROM weightedresults
		 WHERE item_id = ? AND geo_id = ? AND scheme_id = ?
		   AND weighted_value IS NOT NULL
		   AND ic_id IN (?) AND lc_stage_id IN (?)`,
		string(item), int(geo), int(scheme), intsOf(pairs.Categories()), intsOf(pairs.Stages()),
	)
	if err != nil {
		return nil, err
	}

	var rows []WeightedResult
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select weighted results for %s/%d: %w", item, geo, err)
	}
	for _, r := range rows {
		p := lcia.Pair{Category: lcia.ImpactCategoryID(r.ICID), Stage: lcia.LCStageID(r.StageID)}
		if pairs.Contains(p) {
			out[p] = lcia.LCIAValue(*r.Value)
		}
	}
	return out, nil
}

// SingleScore returns the item's single score; ok is false when the row is
// absent or null.
func (s *Store) SingleScore(ctx context.Context, item lcia.ItemID, geo lcia.GeoID, scheme lcia.WeightingSchemeID) (lcia.LCIAValue, bool, error) {
	var score sql.NullFloat64
	err := s.get(ctx, &score,
		`SELECT single_score FROM singlescores
		 WHERE item_id = ? AND geo_id = ? AND scheme_id = ?`,
		string(item), int(geo), int(scheme),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select single score for %s/%d: %w", item, geo, err)
	}
	if !score.Valid {
		return 0, false, nil
	}
	return lcia.LCIAValue(score.Float64), true, nil
}

// ProxyFlag reports whether the item's data is a proxy.
func (s *Store) ProxyFlag(ctx context.Context, item lcia.ItemID, geo lcia.GeoID) (bool, error) {
	var proxy bool
	err := s.get(ctx, &proxy,
		`SELECT proxy_flag FROM metadata WHERE item_id = ? AND geo_id = ?`,
		string(item), int(geo),
	)
	if err != nil {
		return false, notFound(err, "item", fmt.Sprintf("%s (geo %d)", item, geo))
	}
	return proxy, nil
}

func intsOf[T ~int](ids []T) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
