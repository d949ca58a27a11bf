package report

import (
	"bytes"
	"strings"
	"testing"

	"gotest.tools/assert"

	"github.com/wtrsys/zeroflow/internal/pkg/unit/surfacedischarge"
)

func testUnit(t *testing.T) surfacedischarge.Unit {
	t.Helper()
	u, err := surfacedischarge.NewFromConfig(surfacedischarge.Config{
		Name:               "TEST_Surface Discharge",
		FlowVolM3PerS:      []float64{1, 0.5},
		PipeDistanceMiles:  []float64{2, 2},
		PipeDiameterInches: []float64{6, 6},
	})
	assert.NilError(t, err)
	return u
}

func TestPerfRecordsPreserveLabels(t *testing.T) {
	recs := PerfRecords(testUnit(t))
	assert.Equal(t, len(recs), 4, "two vars across two time indices")

	labels := map[string]int{}
	for _, r := range recs {
		labels[r.Label]++
	}
	assert.Equal(t, labels["Pipe Distance"], 2)
	assert.Equal(t, labels["Pipe Diameter"], 2)
}

func TestWriteCostCSV(t *testing.T) {
	recs := []CostRecord{{
		PID:         "2b51e518",
		Unit:        "TEST_Surface Discharge",
		TechType:    "surface_discharge",
		CapitalCost: 112000,
		Currency:    "USD",
	}}

	buf := bytes.Buffer{}
	assert.NilError(t, WriteCostCSV(&buf, recs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 2)
	assert.Equal(t, lines[0], "pid,unit,tech_type,subtype,capital_cost,currency")
	assert.Assert(t, strings.Contains(lines[1], "112000"))
}

func TestWritePerfCSV(t *testing.T) {
	buf := bytes.Buffer{}
	assert.NilError(t, WritePerfCSV(&buf, PerfRecords(testUnit(t))))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 5)
	assert.Equal(t, lines[0], "pid,unit,label,time_index,value,units")
	assert.Assert(t, strings.Contains(lines[1], "Pipe Distance"))
}
