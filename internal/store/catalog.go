package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fitscore/fitscore/pkg/lcia"
)

// CatalogItem is one row of the public item listing.
type CatalogItem struct {
	ItemID            string  `db:"item_id" json:"-"`
	Country3          string  `db:"geo_shorthand_3" json:"-"`
	ProductName       string  `db:"name_lci" json:"product_name"`
	Country           string  `db:"country_name" json:"country"`
	InternationalCode int     `db:"international_code" json:"international_code"`
	Group             *string `db:"group_name" json:"group"`
	Subgroup          *string `db:"subgroup_name" json:"subgroup"`
	Proxy             bool    `db:"proxy_flag" json:"proxy"`
}

// Key returns the "<item_id>-<ISO3>" key used by recipe requests.
func (c CatalogItem) Key() string { return c.ItemID + "-" + c.Country3 }

// Items lists every item with its geography and classification.
func (s *Store) Items(ctx context.Context) ([]CatalogItem, error) {
	var items []CatalogItem
	err := s.selectAll(ctx, &items,
		`SELECT m.item_id, g.geo_shorthand_3, m.name_lci, g.country_name,
		        g.international_code, fg.group_name, fs.subgroup_name, m.proxy_flag
		 FROM metadata m
		 JOIN geographies g ON g.geo_id = m.geo_id
		 LEFT JOIN foodgroups fg ON fg.group_id = m.group_id
		 LEFT JOIN foodsubgroups fs ON fs.subgroup_id = m.subgroup_id
		 ORDER BY m.item_id, g.geo_shorthand_3`,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// GeoByCountry resolves an ISO 3166-1 alpha-3 code to its geography id.
func (s *Store) GeoByCountry(ctx context.Context, iso3 string) (lcia.GeoID, error) {
	var id int
	err := s.get(ctx, &id, `SELECT geo_id FROM geographies WHERE geo_shorthand_3 = ?`, iso3)
	if err != nil {
		return 0, notFound(err, "geography", iso3)
	}
	return lcia.NewGeoID(id)
}

// ResolveScheme looks a scheme up by name or by id; exactly one may be
// given. With neither, the default scheme is used.
func (s *Store) ResolveScheme(ctx context.Context, name string, id int) (lcia.Scheme, error) {
	if name != "" && id != 0 {
		return lcia.Scheme{}, &lcia.ValidationError{
			Field:  "weighting scheme",
			Value:  fmt.Sprintf("name=%q id=%d", name, id),
			Reason: "provide either a scheme name or a scheme id, not both",
		}
	}
	if id != 0 {
		sid, err := lcia.NewWeightingSchemeID(id)
		if err != nil {
			return lcia.Scheme{}, err
		}
		var row WeightingScheme
		err = s.get(ctx, &row, `SELECT scheme_id, name FROM weightingschemes WHERE scheme_id = ?`, id)
		if err != nil {
			return lcia.Scheme{}, notFound(err, "weighting scheme", strconv.Itoa(id))
		}
		return lcia.Scheme{ID: sid, Name: lcia.WeightingSchemeName(row.Name)}, nil
	}

	if name == "" {
		name = string(lcia.DefaultScheme)
	}
	n, err := lcia.NewWeightingSchemeName(name)
	if err != nil {
		return lcia.Scheme{}, err
	}
	var row WeightingScheme
	err = s.get(ctx, &row, `SELECT scheme_id, name FROM weightingschemes WHERE name = ?`, name)
	if err != nil {
		return lcia.Scheme{}, notFound(err, "weighting scheme", name)
	}
	sid, err := lcia.NewWeightingSchemeID(row.SchemeID)
	if err != nil {
		return lcia.Scheme{}, err
	}
	return lcia.Scheme{ID: sid, Name: n}, nil
}

// Schemes lists all weighting schemes.
func (s *Store) Schemes(ctx context.Context) ([]WeightingScheme, error) {
	var rows []WeightingScheme
	if err := s.selectAll(ctx, &rows, `SELECT scheme_id, name FROM weightingschemes ORDER BY scheme_id`); err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	return rows, nil
}

// Name returns the display name of ref.
func (s *Store) Name(ctx context.Context, ref lcia.NameRef) (string, error) {
	var query string
	var arg any
	switch r := ref.(type) {
	case lcia.StageRef:
		query, arg = `SELECT lc_name FROM lifecyclestages WHERE lc_stage_id = ?`, int(r.ID)
	case lcia.CategoryRef:
		query, arg = `SELECT ic_name FROM impactcategories WHERE ic_id = ?`, int(r.ID)
	case lcia.GeoRef:
		query, arg = `SELECT country_name FROM geographies WHERE geo_id = ?`, int(r.ID)
	case lcia.ItemRef:
		query, arg = `SELECT name_lci FROM metadata WHERE item_id = ? ORDER BY geo_id LIMIT 1`, string(r.ID)
	default:
		return "", fmt.Errorf("unsupported name reference %T", ref)
	}

	var name string
	if err := s.get(ctx, &name, query, arg); err != nil {
		return "", notFound(err, ref.Kind()+" name", ref.Key())
	}
	return name, nil
}
