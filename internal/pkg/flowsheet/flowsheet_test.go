package flowsheet

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"
	"gotest.tools/v3/assert"

	"github.com/wtrsys/zeroflow/internal/pkg/costing"
	"github.com/wtrsys/zeroflow/internal/pkg/database"
	"github.com/wtrsys/zeroflow/internal/pkg/database/jsondb"
	"github.com/wtrsys/zeroflow/internal/pkg/msg"
	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
	"github.com/wtrsys/zeroflow/internal/pkg/report"
	"github.com/wtrsys/zeroflow/internal/pkg/unit/surfacedischarge"
)

func testDischarge(t *testing.T, name, subtype string) surfacedischarge.Unit {
	t.Helper()
	u, err := surfacedischarge.NewFromConfig(surfacedischarge.Config{
		Name:               name,
		ProcessSubtype:     subtype,
		FlowVolM3PerS:      []float64{1},
		PipeDistanceMiles:  []float64{2},
		PipeDiameterInches: []float64{6},
	})
	assert.NilError(t, err)
	return u
}

func testAggregator(t *testing.T) *costing.Aggregator {
	t.Helper()
	db, err := jsondb.New("flowsheet_test_database.json")
	assert.NilError(t, err)
	agg, err := costing.New(quantity.USD, db)
	assert.NilError(t, err)
	return agg
}

func TestAddUnit(t *testing.T) {
	fs, err := New("test flowsheet")
	assert.NilError(t, err)

	u := testDischarge(t, "discharge A", "")
	assert.NilError(t, fs.AddUnit(u))
	assert.Error(t, fs.AddUnit(u), "unit "+u.PID().String()+" already registered")
	assert.Equal(t, len(fs.Units()), 1)
}

func TestCostUnits(t *testing.T) {
	fs, err := New("test flowsheet")
	assert.NilError(t, err)
	assert.NilError(t, fs.AddUnit(testDischarge(t, "discharge A", "")))
	assert.NilError(t, fs.AddUnit(testDischarge(t, "discharge B", "")))

	agg := testAggregator(t)
	assert.NilError(t, fs.CostUnits(agg))

	total := agg.TotalCapitalCost()
	assert.Assert(t, scalar.EqualWithinAbs(total.Value, 2*112000, 1e-6))
	assert.Equal(t, agg.FlowCount("electricity"), 2)
}

func TestCostUnitsPublishesReports(t *testing.T) {
	fs, err := New("test flowsheet")
	assert.NilError(t, err)
	u := testDischarge(t, "discharge A", "")
	assert.NilError(t, fs.AddUnit(u))

	subPID := uuid.New()
	chCost, err := fs.Subscribe(subPID, msg.Costing)
	assert.NilError(t, err)
	chPerf, err := fs.Subscribe(subPID, msg.Performance)
	assert.NilError(t, err)

	assert.NilError(t, fs.CostUnits(testAggregator(t)))

	costMsg := <-chCost
	rec, ok := costMsg.Payload().(report.CostRecord)
	assert.Assert(t, ok)
	assert.Equal(t, rec.Unit, "discharge A")
	assert.Assert(t, scalar.EqualWithinAbs(rec.CapitalCost, 112000, 1e-6))
	assert.Equal(t, rec.Currency, "USD")

	perfMsg := <-chPerf
	perf, ok := perfMsg.Payload().([]report.PerfRecord)
	assert.Assert(t, ok)
	assert.Equal(t, len(perf), 2)
	assert.Equal(t, perf[0].Label, "Pipe Distance")
	assert.Equal(t, perf[1].Label, "Pipe Diameter")
}

func TestCostUnitsAbortsOnLookupFailure(t *testing.T) {
	fs, err := New("test flowsheet")
	assert.NilError(t, err)
	assert.NilError(t, fs.AddUnit(testDischarge(t, "bad discharge", "no_such_subtype")))

	err = fs.CostUnits(testAggregator(t))
	assert.Assert(t, errors.Is(err, database.ErrUnknownSubtype))
}
