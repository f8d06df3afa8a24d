package lcia

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var countryAcronymPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ItemKey is the public form of an item reference: "<item_id>-<ISO3>",
// e.g. "20134-FRA".
type ItemKey struct {
	ItemID  ItemID
	Country string
}

// ParseItemKey splits and validates an "<item_id>-<ISO3>" key.
func ParseItemKey(s string) (ItemKey, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return ItemKey{}, invalid("item key", strconv.Quote(s), "expected format 'item_id-alpha3_country'")
	}
	id, err := NewItemID(parts[0])
	if err != nil {
		return ItemKey{}, err
	}
	if !countryAcronymPattern.MatchString(parts[1]) {
		return ItemKey{}, invalid("country acronym", strconv.Quote(parts[1]), "must be an ISO 3166-1 alpha-3 code")
	}
	return ItemKey{ItemID: id, Country: parts[1]}, nil
}

func (k ItemKey) String() string { return string(k.ItemID) + "-" + k.Country }

// ItemAmount is the mass of an item in a recipe, in kilograms; always > 0.
type ItemAmount float64

// NewItemAmount validates v as an item amount.
func NewItemAmount(v float64) (ItemAmount, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, invalid("item amount", v, "must be greater than 0")
	}
	return ItemAmount(v), nil
}
