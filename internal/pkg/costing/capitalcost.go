package costing

import (
	"fmt"

	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
)

// CapitalCostParams are the tabulated technology parameters of the
// power-law-plus-pipe capital cost curve.
type CapitalCostParams struct {
	// A scales the base construction cost; a currency.
	A quantity.Quantity
	// B is the power-law exponent; dimensionless.
	B quantity.Quantity
	// PipeCostBasis prices installed pipe per unit distance and diameter.
	PipeCostBasis quantity.Quantity
	// ReferenceState normalizes the flow before exponentiation.
	ReferenceState quantity.Quantity
	// CostFactor is the installation/indirect markup; dimensionless.
	CostFactor quantity.Quantity
}

// CapitalCost evaluates
//
//	cost_factor * (A * (flow_vol/reference_state)^B + pipe_cost_basis * pipe_distance * pipe_diameter)
//
// in the base currency. The flow is reduced to a dimensionless ratio before
// the possibly fractional exponent is applied, and both cost terms are
// converted to the base currency before they combine. A zero reference state
// or any dimensional mismatch is an error; zero flow or zero pipe dimensions
// are valid inputs.
func CapitalCost(p CapitalCostParams, flowVol, pipeDistance, pipeDiameter quantity.Quantity, baseCurrency quantity.Unit) (quantity.Quantity, error) {
	ratio, err := quantity.Ratio(flowVol, p.ReferenceState)
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("flow normalization: %w", err)
	}

	b, err := p.B.Convert(quantity.Dimensionless)
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("capital_b_parameter: %w", err)
	}

	pw, err := quantity.Pow(quantity.New(ratio, quantity.Dimensionless), b.Value)
	if err != nil {
		return quantity.Quantity{}, err
	}

	baseCost, err := quantity.Scale(p.A, pw.Value).Convert(baseCurrency)
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("base construction cost: %w", err)
	}

	pipeCost, err := quantity.Mul(quantity.Mul(p.PipeCostBasis, pipeDistance), pipeDiameter).Convert(baseCurrency)
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("pipe cost: %w", err)
	}

	cf, err := p.CostFactor.Convert(quantity.Dimensionless)
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("cost_factor: %w", err)
	}

	total, err := quantity.Add(baseCost, pipeCost)
	if err != nil {
		return quantity.Quantity{}, err
	}
	return quantity.Scale(total, cf.Value), nil
}
