package lcia

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel error kinds. Every typed error in this package unwraps to one of
// them so callers can branch with errors.Is.
var (
	ErrMissingValue       = errors.New("missing LCIA value")
	ErrBoundsInconsistent = errors.New("inconsistent min/max bounds")
	ErrInvalidValue       = errors.New("invalid value")
	ErrNotFound           = errors.New("not found")
	ErrUnclassified       = errors.New("unclassified failure")
)

// ValidationError reports a value that failed its declared invariant.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidValue }

func invalid(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// MissingValuesError collects every value the data source could not supply
// for one item: required (category, stage) pairs and, if SingleScore is set,
// the item's single score.
type MissingValuesError struct {
	ItemID      ItemID
	GeoID       GeoID
	SchemeID    WeightingSchemeID
	Pairs       []Pair
	SingleScore bool
}

func (e *MissingValuesError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing LCIA values for item %s, geo %d, scheme %d:", e.ItemID, e.GeoID, e.SchemeID)
	if e.SingleScore {
		b.WriteString(" single score;")
	}
	if len(e.Pairs) > 0 {
		pairs := append([]Pair(nil), e.Pairs...)
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = p.String()
		}
		fmt.Fprintf(&b, " weighted results %s;", strings.Join(parts, ", "))
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e *MissingValuesError) Unwrap() error { return ErrMissingValue }

// BoundsError reports a min/max pair that cannot be used for scaling.
// It is a data-integrity defect of the precomputed bounds for a scheme.
type BoundsError struct {
	SchemeID  WeightingSchemeID
	Dimension string
	Min       LCIAValue
	Max       LCIAValue
	Reason    string
}

func (e *BoundsError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("bounds for scheme %d, %s: %s", e.SchemeID, e.Dimension, e.Reason)
	}
	return fmt.Sprintf("bounds for scheme %d, %s: min %g is not less than max %g",
		e.SchemeID, e.Dimension, e.Min, e.Max)
}

func (e *BoundsError) Unwrap() error { return ErrBoundsInconsistent }

// NotFoundError reports a lookup key with no matching record.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for %s", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UnclassifiedError wraps any unexpected failure with the operation that hit it.
type UnclassifiedError struct {
	Op  string
	Err error
}

func (e *UnclassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnclassifiedError) Unwrap() []error { return []error{ErrUnclassified, e.Err} }

// Classify passes through errors that already carry one of the package's
// kinds and wraps anything else as an UnclassifiedError.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrMissingValue, ErrBoundsInconsistent, ErrInvalidValue, ErrNotFound, ErrUnclassified} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return &UnclassifiedError{Op: op, Err: err}
}
