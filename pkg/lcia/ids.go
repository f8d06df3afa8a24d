// Package lcia defines the value types shared by the LCIA aggregation and
// grading pipeline: validated identifiers, bounded numeric wrappers, the
// per-item and graded result aggregates, and the typed error kinds.
//
// Every constructor validates its input and rejects, rather than coerces,
// values that break an invariant.
package lcia

import (
	"fmt"
	"regexp"
	"strconv"
)

var itemIDPattern = regexp.MustCompile(`^\d{4,5}(?:_\d+)?$`)

// ItemID identifies a food item: 4-5 digits with an optional "_<digits>" suffix.
type ItemID string

// NewItemID validates s as an item identifier.
func NewItemID(s string) (ItemID, error) {
	if !itemIDPattern.MatchString(s) {
		return "", invalid("item id", strconv.Quote(s), "must be 4-5 digits with an optional _<digits> suffix")
	}
	return ItemID(s), nil
}

func (id ItemID) String() string { return string(id) }

// GeoID identifies a geography, in [1,249].
type GeoID int

// NewGeoID validates v as a geography identifier.
func NewGeoID(v int) (GeoID, error) {
	if v < 1 || v > 249 {
		return 0, invalid("geo id", v, "must be between 1 and 249")
	}
	return GeoID(v), nil
}

// ImpactCategoryID identifies one of the 17 impact categories.
type ImpactCategoryID int

// BiodiversityCategory only occurs at the agriculture stage.
const BiodiversityCategory ImpactCategoryID = 17

// NewImpactCategoryID validates v as an impact category identifier.
func NewImpactCategoryID(v int) (ImpactCategoryID, error) {
	if v < 1 || v > 17 {
		return 0, invalid("impact category id", v, "must be between 1 and 17")
	}
	return ImpactCategoryID(v), nil
}

func (id ImpactCategoryID) String() string { return "ic" + strconv.Itoa(int(id)) }

// LCStageID identifies a life-cycle stage, in [1,6].
type LCStageID int

// Life-cycle stages used by the default pipeline.
const (
	StageAgriculture LCStageID = 1
	StageProcessing  LCStageID = 2
	StageTransport   LCStageID = 4
	StageRetail      LCStageID = 5
)

// NewLCStageID validates v as a life-cycle stage identifier.
func NewLCStageID(v int) (LCStageID, error) {
	if v < 1 || v > 6 {
		return 0, invalid("life cycle stage id", v, "must be between 1 and 6")
	}
	return LCStageID(v), nil
}

func (id LCStageID) String() string { return "lc" + strconv.Itoa(int(id)) }

// WeightingSchemeID identifies a weighting scheme; always positive.
type WeightingSchemeID int

// NewWeightingSchemeID validates v as a weighting scheme identifier.
func NewWeightingSchemeID(v int) (WeightingSchemeID, error) {
	if v < 1 {
		return 0, invalid("weighting scheme id", v, "must be positive")
	}
	return WeightingSchemeID(v), nil
}

// WeightingSchemeName is one of the fixed, published scheme names.
type WeightingSchemeName string

// Known weighting schemes.
const (
	SchemeEF31R0510   WeightingSchemeName = "ef31_r0510"
	SchemeEF31R0110   WeightingSchemeName = "ef31_r0110"
	SchemeEF31NR      WeightingSchemeName = "ef31_nr"
	SchemeDelphiR0510 WeightingSchemeName = "delphi_r0510"
	SchemeDelphiR0110 WeightingSchemeName = "delphi_r0110"
	SchemeDelphiNR    WeightingSchemeName = "delphi_nr"
)

// DefaultScheme is used when a request names no scheme.
const DefaultScheme = SchemeDelphiR0110

// SchemeNames lists every accepted scheme name.
func SchemeNames() []WeightingSchemeName {
	return []WeightingSchemeName{
		SchemeEF31R0510, SchemeEF31R0110, SchemeEF31NR,
		SchemeDelphiR0510, SchemeDelphiR0110, SchemeDelphiNR,
	}
}

// NewWeightingSchemeName validates s against the known scheme names.
func NewWeightingSchemeName(s string) (WeightingSchemeName, error) {
	for _, n := range SchemeNames() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", invalid("weighting scheme name", strconv.Quote(s), "must be one of %v", SchemeNames())
}

// Scheme is a resolved weighting scheme: both its id and its name.
type Scheme struct {
	ID   WeightingSchemeID   `json:"id"`
	Name WeightingSchemeName `json:"name"`
}

func (s Scheme) String() string { return fmt.Sprintf("%s (%d)", s.Name, s.ID) }
