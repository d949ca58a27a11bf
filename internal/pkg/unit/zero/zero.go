// Package zero holds the shared state of zero-order pass-through unit
// operations: a volumetric flow per time index and the pump electricity
// drawn to move it.
package zero

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
)

// ErrTimeIndex is returned when a time index falls outside the block's
// defined time set.
var ErrTimeIndex = errors.New("time index out of range")

const (
	waterDensityKgM3 = 1000.0
	gravityMS2       = 9.81
)

// PumpParams holds the pumping relation inputs.
type PumpParams struct {
	LiftHeight      quantity.Quantity
	PumpEfficiency  quantity.Quantity
	MotorEfficiency quantity.Quantity
}

// DefaultPumpParams returns the customary defaults: 100 ft of lift at 90%
// pump and motor efficiency.
func DefaultPumpParams() PumpParams {
	return PumpParams{
		LiftHeight:      quantity.New(100, quantity.Foot),
		PumpEfficiency:  quantity.New(0.9, quantity.Dimensionless),
		MotorEfficiency: quantity.New(0.9, quantity.Dimensionless),
	}
}

// PumpElectricity returns the electric power drawn to lift the volumetric
// flow: P = rho * g * Q * H / (eta_pump * eta_motor), expressed in kW.
func PumpElectricity(flowVol quantity.Quantity, p PumpParams) (quantity.Quantity, error) {
	q, err := flowVol.Convert(quantity.CubicMeterPerSecond)
	if err != nil {
		return quantity.Quantity{}, err
	}
	h, err := p.LiftHeight.Convert(quantity.Meter)
	if err != nil {
		return quantity.Quantity{}, err
	}
	if !p.PumpEfficiency.Dimensionless() || !p.MotorEfficiency.Dimensionless() {
		return quantity.Quantity{}, fmt.Errorf("%w: pump efficiencies", quantity.ErrNotDimensionless)
	}
	eta := p.PumpEfficiency.Base() * p.MotorEfficiency.Base()
	if eta == 0 {
		return quantity.Quantity{}, fmt.Errorf("%w: zero pump efficiency", quantity.ErrDivideByZero)
	}

	watts := waterDensityKgM3 * gravityMS2 * q.Value * h.Value / eta
	return quantity.New(watts, quantity.Watt).Convert(quantity.Kilowatt)
}

// Block is the base state of a zero-order pass-through unit. Outlet flow
// equals inlet flow at every time index.
type Block struct {
	pid         uuid.UUID
	name        string
	subtype     string
	flowVol     []quantity.Quantity
	electricity []quantity.Quantity
}

// Build assembles the pass-through block and derives the electricity draw at
// every time index from the pumping relation.
func Build(name, subtype string, flowVol []quantity.Quantity, pump PumpParams) (Block, error) {
	if len(flowVol) == 0 {
		return Block{}, errors.New("pass-through block requires at least one time index")
	}

	electricity := make([]quantity.Quantity, len(flowVol))
	for t, q := range flowVol {
		p, err := PumpElectricity(q, pump)
		if err != nil {
			return Block{}, fmt.Errorf("electricity at time index %d: %w", t, err)
		}
		electricity[t] = p
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return Block{}, err
	}

	return Block{
		pid:         pid,
		name:        name,
		subtype:     subtype,
		flowVol:     flowVol,
		electricity: electricity,
	}, nil
}

// PID is a getter for the block PID.
func (b Block) PID() uuid.UUID {
	return b.pid
}

// Name is a getter for the block name.
func (b Block) Name() string {
	return b.name
}

// Subtype returns the process subtype, empty for the default technology
// parameterization.
func (b Block) Subtype() string {
	return b.subtype
}

// TimeIndices returns the number of defined time indices.
func (b Block) TimeIndices() int {
	return len(b.flowVol)
}

// FlowVol returns the volumetric flow at a time index.
func (b Block) FlowVol(t int) (quantity.Quantity, error) {
	if t < 0 || t >= len(b.flowVol) {
		return quantity.Quantity{}, fmt.Errorf("%w: %d", ErrTimeIndex, t)
	}
	return b.flowVol[t], nil
}

// Electricity returns the pump electricity draw at a time index.
func (b Block) Electricity(t int) (quantity.Quantity, error) {
	if t < 0 || t >= len(b.electricity) {
		return quantity.Quantity{}, fmt.Errorf("%w: %d", ErrTimeIndex, t)
	}
	return b.electricity[t], nil
}
