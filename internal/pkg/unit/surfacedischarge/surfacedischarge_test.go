package surfacedischarge

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gotest.tools/assert"

	"github.com/wtrsys/zeroflow/internal/pkg/costing"
	"github.com/wtrsys/zeroflow/internal/pkg/database"
	"github.com/wtrsys/zeroflow/internal/pkg/database/jsondb"
	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
)

func TestReadConfig(t *testing.T) {
	testConfig := Config{}
	jsonConfig, err := ioutil.ReadFile("surfacedischarge_test_config.json")
	assert.NilError(t, err)

	err = json.Unmarshal(jsonConfig, &testConfig)
	assert.NilError(t, err)

	assertConfig := Config{"TEST_Surface Discharge", "", []float64{1}, []float64{2}, []float64{6}, 100}
	assert.DeepEqual(t, testConfig, assertConfig)
}

func TestNew(t *testing.T) {
	u, err := New("surfacedischarge_test_config.json")
	assert.NilError(t, err)

	assert.Equal(t, u.Name(), "TEST_Surface Discharge")
	assert.Equal(t, u.TechType(), "surface_discharge")
	assert.Equal(t, u.Subtype(), "")

	dist, err := u.PipeDistance(0)
	assert.NilError(t, err)
	assert.Equal(t, dist.Value, 2.0)
	assert.Equal(t, dist.Unit.Name, "mile")

	diam, err := u.PipeDiameter(0)
	assert.NilError(t, err)
	assert.Equal(t, diam.Value, 6.0)
	assert.Equal(t, diam.Unit.Name, "in")
}

func TestNewRejectsRaggedTimeSeries(t *testing.T) {
	_, err := NewFromConfig(Config{
		Name:               "ragged",
		FlowVolM3PerS:      []float64{1, 2},
		PipeDistanceMiles:  []float64{2},
		PipeDiameterInches: []float64{6, 6},
	})
	assert.Assert(t, err != nil)
}

func TestPerfVarLabels(t *testing.T) {
	u, err := New("surfacedischarge_test_config.json")
	assert.NilError(t, err)

	vars := u.PerfVars()
	assert.Equal(t, len(vars), 2)
	assert.Equal(t, vars[0].Label, "Pipe Distance")
	assert.Equal(t, vars[1].Label, "Pipe Diameter")
	assert.Equal(t, len(vars[0].Values), 1)
}

func TestCost(t *testing.T) {
	u, err := New("surfacedischarge_test_config.json")
	assert.NilError(t, err)

	db, err := jsondb.New("surfacedischarge_test_database.json")
	assert.NilError(t, err)

	agg, err := costing.New(quantity.USD, db)
	assert.NilError(t, err)

	blk := agg.NewBlock(u.PID())
	assert.NilError(t, u.Cost(blk))

	// 100000*1^0.6 + 1000*2*6
	assert.Assert(t, blk.Costed())
	assert.Assert(t, scalar.EqualWithinAbs(blk.CapitalCost().Value, 112000, 1e-6))
	assert.Equal(t, blk.CapitalCost().Unit.Name, "USD")

	// pump electricity registered once under "electricity"
	assert.Equal(t, agg.FlowCount("electricity"), 1)
	elec, err := agg.FlowTotal("electricity", quantity.Kilowatt)
	assert.NilError(t, err)
	assert.Assert(t, scalar.EqualWithinAbs(elec.Value, 369.1467, 1e-3))
}

func TestCostTwiceDoesNotDoubleFlows(t *testing.T) {
	u, err := New("surfacedischarge_test_config.json")
	assert.NilError(t, err)

	db, err := jsondb.New("surfacedischarge_test_database.json")
	assert.NilError(t, err)

	agg, err := costing.New(quantity.USD, db)
	assert.NilError(t, err)

	before := agg.NewBlock(u.PID())
	assert.NilError(t, u.Cost(before))
	after := agg.NewBlock(u.PID())
	assert.NilError(t, u.Cost(after))

	assert.Equal(t, agg.FlowCount("electricity"), 1, "re-costing doubled the registered flows")
	total := agg.TotalCapitalCost()
	assert.Assert(t, scalar.EqualWithinAbs(total.Value, 112000, 1e-6), "re-costing doubled the capital cost")
}

func TestCostSubtypeFactor(t *testing.T) {
	cfg := Config{
		Name:               "municipal discharge",
		ProcessSubtype:     "municipal",
		FlowVolM3PerS:      []float64{1},
		PipeDistanceMiles:  []float64{2},
		PipeDiameterInches: []float64{6},
	}
	u, err := NewFromConfig(cfg)
	assert.NilError(t, err)

	db, err := jsondb.New("surfacedischarge_test_database.json")
	assert.NilError(t, err)

	agg, err := costing.New(quantity.USD, db)
	assert.NilError(t, err)

	blk := agg.NewBlock(u.PID())
	assert.NilError(t, u.Cost(blk))
	assert.Assert(t, scalar.EqualWithinAbs(blk.CapitalCost().Value, 1.2*112000, 1e-6))
}

func TestCostMissingParameter(t *testing.T) {
	u, err := New("surfacedischarge_test_config.json")
	assert.NilError(t, err)

	db, err := jsondb.New("surfacedischarge_test_database_missing.json")
	assert.NilError(t, err)

	agg, err := costing.New(quantity.USD, db)
	assert.NilError(t, err)

	blk := agg.NewBlock(u.PID())
	err = u.Cost(blk)
	assert.Assert(t, errors.Is(err, database.ErrMissingParameter))

	// the failed pass left no partial state behind
	assert.Assert(t, !blk.Costed())
	assert.Equal(t, agg.FlowCount("electricity"), 0)
}

func TestCostUnknownSubtype(t *testing.T) {
	cfg := Config{
		Name:               "unknown subtype discharge",
		ProcessSubtype:     "brackish",
		FlowVolM3PerS:      []float64{1},
		PipeDistanceMiles:  []float64{2},
		PipeDiameterInches: []float64{6},
	}
	u, err := NewFromConfig(cfg)
	assert.NilError(t, err)

	db, err := jsondb.New("surfacedischarge_test_database.json")
	assert.NilError(t, err)

	agg, err := costing.New(quantity.USD, db)
	assert.NilError(t, err)

	err = u.Cost(agg.NewBlock(u.PID()))
	assert.Assert(t, errors.Is(err, database.ErrUnknownSubtype))
}
