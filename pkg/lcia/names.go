package lcia

import "strconv"

// NameRef is an identifier whose display name can be looked up. The set of
// implementations is closed; consumers dispatch with a type switch.
type NameRef interface {
	// Kind is the human name of the identifier kind, e.g. "life cycle stage".
	Kind() string
	// Key is the identifier rendered as a lookup key.
	Key() string
	isNameRef()
}

type (
	StageRef    struct{ ID LCStageID }
	CategoryRef struct{ ID ImpactCategoryID }
	GeoRef      struct{ ID GeoID }
	ItemRef     struct{ ID ItemID }
)

func (StageRef) Kind() string    { return "life cycle stage" }
func (CategoryRef) Kind() string { return "impact category" }
func (GeoRef) Kind() string      { return "geography" }
func (ItemRef) Kind() string     { return "item" }

func (r StageRef) Key() string    { return strconv.Itoa(int(r.ID)) }
func (r CategoryRef) Key() string { return strconv.Itoa(int(r.ID)) }
func (r GeoRef) Key() string      { return strconv.Itoa(int(r.ID)) }
func (r ItemRef) Key() string     { return string(r.ID) }

func (StageRef) isNameRef()    {}
func (CategoryRef) isNameRef() {}
func (GeoRef) isNameRef()      {}
func (ItemRef) isNameRef()     {}
