// Package surfacedischarge implements the zero-order surface discharge unit
// operation: a pass-through block with piped conveyance to the discharge
// point, costed from tabulated construction and pipe cost parameters.
package surfacedischarge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/wtrsys/zeroflow/internal/pkg/costing"
	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
	"github.com/wtrsys/zeroflow/internal/pkg/unit"
	"github.com/wtrsys/zeroflow/internal/pkg/unit/zero"
)

// TechType is the technology identifier used for parameter lookup.
const TechType = "surface_discharge"

// Report labels. Downstream exports key on these exact strings.
const (
	PipeDistanceLabel = "Pipe Distance"
	PipeDiameterLabel = "Pipe Diameter"
)

// Config is the unit's construction-time parameterization. Pipe distance and
// diameter are fixed design inputs, one value per time index.
type Config struct {
	Name               string    `json:"Name"`
	ProcessSubtype     string    `json:"ProcessSubtype"`
	FlowVolM3PerS      []float64 `json:"FlowVolM3PerS"`
	PipeDistanceMiles  []float64 `json:"PipeDistanceMiles"`
	PipeDiameterInches []float64 `json:"PipeDiameterInches"`
	LiftHeightFt       float64   `json:"LiftHeightFt"`
}

// Unit is a surface discharge unit operation.
type Unit struct {
	zero.Block
	config       Config
	pipeDistance []quantity.Quantity
	pipeDiameter []quantity.Quantity
}

// New builds a surface discharge unit from a JSON config file.
func New(configPath string) (Unit, error) {
	raw, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Unit{}, err
	}
	cfg := Config{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Unit{}, err
	}
	return NewFromConfig(cfg)
}

// NewFromConfig builds a surface discharge unit from an in-memory config.
func NewFromConfig(cfg Config) (Unit, error) {
	n := len(cfg.FlowVolM3PerS)
	if n == 0 {
		return Unit{}, errors.New("surface discharge: empty flow time series")
	}
	if len(cfg.PipeDistanceMiles) != n || len(cfg.PipeDiameterInches) != n {
		return Unit{}, fmt.Errorf("surface discharge: pipe design variables must cover all %d time indices", n)
	}

	flow := make([]quantity.Quantity, n)
	dist := make([]quantity.Quantity, n)
	diam := make([]quantity.Quantity, n)
	for t := 0; t < n; t++ {
		flow[t] = quantity.New(cfg.FlowVolM3PerS[t], quantity.CubicMeterPerSecond)
		dist[t] = quantity.New(cfg.PipeDistanceMiles[t], quantity.Mile)
		diam[t] = quantity.New(cfg.PipeDiameterInches[t], quantity.Inch)
	}

	pump := zero.DefaultPumpParams()
	if cfg.LiftHeightFt > 0 {
		pump.LiftHeight = quantity.New(cfg.LiftHeightFt, quantity.Foot)
	}

	blk, err := zero.Build(cfg.Name, cfg.ProcessSubtype, flow, pump)
	if err != nil {
		return Unit{}, err
	}

	return Unit{
		Block:        blk,
		config:       cfg,
		pipeDistance: dist,
		pipeDiameter: diam,
	}, nil
}

// TechType returns the technology identifier.
func (u Unit) TechType() string {
	return TechType
}

// Config returns the unit's construction configuration.
func (u Unit) Config() Config {
	return u.config
}

// PipeDistance returns the piping distance at a time index.
func (u Unit) PipeDistance(t int) (quantity.Quantity, error) {
	if t < 0 || t >= len(u.pipeDistance) {
		return quantity.Quantity{}, fmt.Errorf("%w: %d", zero.ErrTimeIndex, t)
	}
	return u.pipeDistance[t], nil
}

// PipeDiameter returns the pipe diameter at a time index.
func (u Unit) PipeDiameter(t int) (quantity.Quantity, error) {
	if t < 0 || t >= len(u.pipeDiameter) {
		return quantity.Quantity{}, fmt.Errorf("%w: %d", zero.ErrTimeIndex, t)
	}
	return u.pipeDiameter[t], nil
}

// PerfVars exposes the unit's design variables for reporting.
func (u Unit) PerfVars() []unit.PerfVar {
	return []unit.PerfVar{
		{Label: PipeDistanceLabel, Values: u.pipeDistance},
		{Label: PipeDiameterLabel, Values: u.pipeDiameter},
	}
}

// Cost prices the unit against its costing sub-block: capital cost from the
// construction and pipe cost curve at the first time index, and the pump
// electricity draw registered for operating cost accounting. Any lookup,
// conversion, or normalization failure propagates before the block or the
// aggregator is touched.
func (u Unit) Cost(blk *costing.Block) error {
	params, err := blk.Database().GetUnitOperationParameters(u.TechType(), u.Subtype())
	if err != nil {
		return err
	}

	a, err := params.CapitalParameter("capital_a_parameter")
	if err != nil {
		return err
	}
	b, err := params.CapitalParameter("capital_b_parameter")
	if err != nil {
		return err
	}
	basis, err := params.CapitalParameter("pipe_cost_basis")
	if err != nil {
		return err
	}
	ref, err := params.CapitalParameter("reference_state")
	if err != nil {
		return err
	}
	cf, err := params.CostFactor()
	if err != nil {
		return err
	}

	t0 := 0
	flow, err := u.FlowVol(t0)
	if err != nil {
		return err
	}
	dist, err := u.PipeDistance(t0)
	if err != nil {
		return err
	}
	diam, err := u.PipeDiameter(t0)
	if err != nil {
		return err
	}
	elec, err := u.Electricity(t0)
	if err != nil {
		return err
	}

	cc, err := costing.CapitalCost(costing.CapitalCostParams{
		A:              a,
		B:              b,
		PipeCostBasis:  basis,
		ReferenceState: ref,
		CostFactor:     cf,
	}, flow, dist, diam, blk.BaseCurrency())
	if err != nil {
		return fmt.Errorf("costing %s: %w", u.Name(), err)
	}

	if err := blk.SetCapitalCost(cf, cc); err != nil {
		return fmt.Errorf("costing %s: %w", u.Name(), err)
	}

	blk.CostFlow(elec, "electricity")
	return nil
}
