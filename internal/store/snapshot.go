package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Snapshot is the full content of the LCIA tables.
type Snapshot struct {
	Geographies      []Geography       `json:"geographies"`
	Groups           []Group           `json:"groups"`
	Subgroups        []Subgroup        `json:"subgroups"`
	ImpactCategories []ImpactCategory  `json:"impact_categories"`
	LifeCycleStages  []LifeCycleStage  `json:"life_cycle_stages"`
	Schemes          []WeightingScheme `json:"weighting_schemes"`
	Weights          []CategoryWeight  `json:"impact_category_weights"`
	Items            []Item            `json:"items"`
	SingleScores     []SingleScore     `json:"single_scores"`
	WeightedResults  []WeightedResult  `json:"weighted_results"`
}

// RowCounts returns the number of rows per table.
func (s *Snapshot) RowCounts() map[string]int {
	return map[string]int{
		"geographies":           len(s.Geographies),
		"foodgroups":            len(s.Groups),
		"foodsubgroups":         len(s.Subgroups),
		"impactcategories":      len(s.ImpactCategories),
		"lifecyclestages":       len(s.LifeCycleStages),
		"weightingschemes":      len(s.Schemes),
		"impactcategoryweights": len(s.Weights),
		"metadata":              len(s.Items),
		"singlescores":          len(s.SingleScores),
		"weightedresults":       len(s.WeightedResults),
	}
}

// table describes how one table is dumped and loaded. Tables are listed in
// dependency order; deletes run in reverse.
type table struct {
	name    string
	columns string
	rows    func(*Snapshot) any // *[]Row
	each    func(*Snapshot, func(any) error) error
}

func eachOf[T any](rows []T, fn func(any) error) error {
	for i := range rows {
		if err := fn(rows[i]); err != nil {
			return err
		}
	}
	return nil
}

var tables = []table{
	{"geographies", "geo_id, international_code, geo_shorthand_2, geo_shorthand_3, country_name",
		func(s *Snapshot) any { return &s.Geographies },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.Geographies, fn) }},
	{"foodgroups", "group_id, group_name",
		func(s *Snapshot) any { return &s.Groups },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.Groups, fn) }},
	{"foodsubgroups", "subgroup_id, subgroup_name",
		func(s *Snapshot) any { return &s.Subgroups },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.Subgroups, fn) }},
	{"impactcategories", "ic_id, ic_name, ic_shorthand, normalization_value, normalization_unit",
		func(s *Snapshot) any { return &s.ImpactCategories },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.ImpactCategories, fn) }},
	{"lifecyclestages", "lc_stage_id, lc_stage_shorthand, lc_name",
		func(s *Snapshot) any { return &s.LifeCycleStages },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.LifeCycleStages, fn) }},
	{"weightingschemes", "scheme_id, name",
		func(s *Snapshot) any { return &s.Schemes },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.Schemes, fn) }},
	{"impactcategoryweights", "scheme_id, ic_id, ic_weight",
		func(s *Snapshot) any { return &s.Weights },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.Weights, fn) }},
	{"metadata", "item_id, geo_id, code_ciqual, name_lci, group_id, subgroup_id, proxy_flag",
		func(s *Snapshot) any { return &s.Items },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.Items, fn) }},
	{"singlescores", "item_id, geo_id, scheme_id, single_score",
		func(s *Snapshot) any { return &s.SingleScores },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.SingleScores, fn) }},
	{"weightedresults", "item_id, geo_id, ic_id, lc_stage_id, scheme_id, weighted_value",
		func(s *Snapshot) any { return &s.WeightedResults },
		func(s *Snapshot, fn func(any) error) error { return eachOf(s.WeightedResults, fn) }},
}

// Dump reads every LCIA table into a snapshot.
func (s *Store) Dump(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	for _, t := range tables {
		query := "SELECT " + t.columns + " FROM " + t.name + " ORDER BY " + positions(t.columns)
		if err := s.db.SelectContext(ctx, t.rows(snap), query); err != nil {
			return nil, fmt.Errorf("dump %s: %w", t.name, err)
		}
	}
	return snap, nil
}

// Replace swaps the content of every LCIA table for the snapshot in a
// single transaction.
func (s *Store) Replace(ctx context.Context, snap *Snapshot) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tables[i].name); err != nil {
			return fmt.Errorf("clear %s: %w", tables[i].name, err)
		}
	}
	for _, t := range tables {
		if err := insertAll(ctx, tx, t, snap); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sqlx.Tx, t table, snap *Snapshot) error {
	query := "INSERT INTO " + t.name + " (" + t.columns + ") VALUES (" + namedParams(t.columns) + ")"
	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", t.name, err)
	}
	defer stmt.Close()

	return t.each(snap, func(row any) error {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("insert into %s: %w", t.name, err)
		}
		return nil
	})
}

func columnList(columns string) []string {
	cols := strings.Split(columns, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

// namedParams turns "a, b" into ":a, :b".
func namedParams(columns string) string {
	cols := columnList(columns)
	for i := range cols {
		cols[i] = ":" + cols[i]
	}
	return strings.Join(cols, ", ")
}

// positions turns "a, b" into "1, 2" for a full positional ORDER BY.
func positions(columns string) string {
	cols := columnList(columns)
	for i := range cols {
		cols[i] = strconv.Itoa(i + 1)
	}
	return strings.Join(cols, ", ")
}
