package store

// Row types mirror the LCIA tables one to one. They double as the on-disk
// dataset format, so every field carries a json tag.

type Geography struct {
	GeoID             int    `db:"geo_id" json:"geo_id"`
	InternationalCode int    `db:"international_code" json:"international_code"`
	Shorthand2        string `db:"geo_shorthand_2" json:"geo_shorthand_2"`
	Shorthand3        string `db:"geo_shorthand_3" json:"geo_shorthand_3"`
	CountryName       string `db:"country_name" json:"country_name"`
}

type Group struct {
	GroupID int    `db:"group_id" json:"group_id"`
	Name    string `db:"group_name" json:"group_name"`
}

type Subgroup struct {
	SubgroupID int    `db:"subgroup_id" json:"subgroup_id"`
	Name       string `db:"subgroup_name" json:"subgroup_name"`
}

type ImpactCategory struct {
	ICID               int     `db:"ic_id" json:"ic_id"`
	Name               string  `db:"ic_name" json:"ic_name"`
	Shorthand          string  `db:"ic_shorthand" json:"ic_shorthand"`
	NormalizationValue float64 `db:"normalization_value" json:"normalization_value"`
	NormalizationUnit  string  `db:"normalization_unit" json:"normalization_unit"`
}

type LifeCycleStage struct {
	StageID   int    `db:"lc_stage_id" json:"lc_stage_id"`
	Shorthand string `db:"lc_stage_shorthand" json:"lc_stage_shorthand"`
	Name      string `db:"lc_name" json:"lc_name"`
}

type WeightingScheme struct {
	SchemeID int    `db:"scheme_id" json:"scheme_id"`
	Name     string `db:"name" json:"name"`
}

type CategoryWeight struct {
	SchemeID int     `db:"scheme_id" json:"scheme_id"`
	ICID     int     `db:"ic_id" json:"ic_id"`
	Weight   float64 `db:"ic_weight" json:"ic_weight"`
}

type Item struct {
	ItemID     string  `db:"item_id" json:"item_id"`
	GeoID      int     `db:"geo_id" json:"geo_id"`
	CodeCiqual *string `db:"code_ciqual" json:"code_ciqual,omitempty"`
	NameLCI    string  `db:"name_lci" json:"name_lci"`
	GroupID    *int    `db:"group_id" json:"group_id,omitempty"`
	SubgroupID *int    `db:"subgroup_id" json:"subgroup_id,omitempty"`
	ProxyFlag  bool    `db:"proxy_flag" json:"proxy_flag"`
}

type SingleScore struct {
	ItemID   string   `db:"item_id" json:"item_id"`
	GeoID    int      `db:"geo_id" json:"geo_id"`
	SchemeID int      `db:"scheme_id" json:"scheme_id"`
	Score    *float64 `db:"single_score" json:"single_score"`
}

type WeightedResult struct {
	ItemID   string   `db:"item_id" json:"item_id"`
	GeoID    int      `db:"geo_id" json:"geo_id"`
	ICID     int      `db:"ic_id" json:"ic_id"`
	StageID  int      `db:"lc_stage_id" json:"lc_stage_id"`
	SchemeID int      `db:"scheme_id" json:"scheme_id"`
	Value    *float64 `db:"weighted_value" json:"weighted_value"`
}
