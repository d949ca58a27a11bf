// Package database defines the flowsheet-wide technology parameter store
// consumed by unit costing methods.
package database

import (
	"errors"
	"fmt"

	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
)

var (
	// ErrUnknownTechnology is returned when no entry exists for a technology
	// type.
	ErrUnknownTechnology = errors.New("unknown technology")
	// ErrUnknownSubtype is returned when the technology exists but carries no
	// entry for the requested process subtype.
	ErrUnknownSubtype = errors.New("unknown process subtype")
	// ErrMissingParameter is returned when a named cost parameter is absent
	// from the retrieved parameter set. A missing cost basis makes the
	// resulting capital cost meaningless, so this is never defaulted.
	ErrMissingParameter = errors.New("missing cost parameter")
)

// Store retrieves tabulated cost and performance parameters for a unit
// operation technology.
type Store interface {
	GetUnitOperationParameters(techType string, subtype string) (Parameters, error)
}

// Entry is a single tabulated parameter: a value paired with its unit string.
type Entry struct {
	Value float64 `json:"value" bson:"value"`
	Units string  `json:"units" bson:"units"`
}

// Quantity resolves the entry into a dimensioned quantity.
func (e Entry) Quantity() (quantity.Quantity, error) {
	u, err := quantity.ParseUnit(e.Units)
	if err != nil {
		return quantity.Quantity{}, err
	}
	return quantity.New(e.Value, u), nil
}

// Parameters is the retrieved parameter set for one technology/subtype
// combination: named performance scalars plus the nested capital_cost entry.
type Parameters struct {
	TechType string
	Subtype  string
	scalars  map[string]Entry
	capital  map[string]Entry
}

// NewParameters assembles a parameter set. Backends call this after fetching
// and merging their stored representation.
func NewParameters(techType, subtype string, scalars, capital map[string]Entry) Parameters {
	return Parameters{TechType: techType, Subtype: subtype, scalars: scalars, capital: capital}
}

// Parameter returns the named performance scalar.
func (p Parameters) Parameter(name string) (quantity.Quantity, error) {
	e, ok := p.scalars[name]
	if !ok {
		return quantity.Quantity{}, fmt.Errorf("%w: %q for technology %q", ErrMissingParameter, name, p.TechType)
	}
	q, err := e.Quantity()
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("parameter %q: %w", name, err)
	}
	return q, nil
}

// CapitalParameter returns the named scalar from the capital_cost entry.
func (p Parameters) CapitalParameter(name string) (quantity.Quantity, error) {
	e, ok := p.capital[name]
	if !ok {
		return quantity.Quantity{}, fmt.Errorf("%w: capital_cost.%q for technology %q", ErrMissingParameter, name, p.TechType)
	}
	q, err := e.Quantity()
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("parameter capital_cost.%q: %w", name, err)
	}
	return q, nil
}

// CostFactor returns the multiplicative installation cost markup from the
// capital_cost entry.
func (p Parameters) CostFactor() (quantity.Quantity, error) {
	return p.CapitalParameter("cost_factor")
}
