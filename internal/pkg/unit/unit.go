// Package unit defines the interfaces shared by zero-order unit operation
// models.
package unit

import (
	"github.com/google/uuid"

	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
)

// PerfVar is a named, time-indexed performance variable exposed for
// reporting. Labels are part of the report format and must not change.
type PerfVar struct {
	Label  string
	Values []quantity.Quantity
}

// Unit is the interface all unit operation models satisfy.
type Unit interface {
	PID() uuid.UUID
	Name() string
	TechType() string
	Subtype() string
	PerfVars() []PerfVar
}

type Identifier interface {
	PID() uuid.UUID
	Name() string
}
