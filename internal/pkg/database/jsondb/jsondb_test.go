package jsondb

import (
	"errors"
	"testing"

	"github.com/wtrsys/zeroflow/internal/pkg/database"
	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
	"gotest.tools/assert"
)

func TestGetDefaultParameters(t *testing.T) {
	db, err := New("jsondb_test_database.json")
	assert.NilError(t, err)

	params, err := db.GetUnitOperationParameters("surface_discharge", "")
	assert.NilError(t, err)

	a, err := params.CapitalParameter("capital_a_parameter")
	assert.NilError(t, err)
	assert.Equal(t, a.Value, 100000.0)
	assert.Equal(t, a.Unit.Dim, quantity.USD.Dim)

	basis, err := params.CapitalParameter("pipe_cost_basis")
	assert.NilError(t, err)
	assert.Equal(t, basis.Unit.Dim, quantity.Dimension{Length: -2, Currency: 1})

	cf, err := params.CostFactor()
	assert.NilError(t, err)
	assert.Equal(t, cf.Value, 1.0)

	lift, err := params.Parameter("lift_height")
	assert.NilError(t, err)
	assert.Equal(t, lift.Value, 100.0)
}

func TestSubtypeOverlaysDefault(t *testing.T) {
	db, err := New("jsondb_test_database.json")
	assert.NilError(t, err)

	params, err := db.GetUnitOperationParameters("surface_discharge", "municipal")
	assert.NilError(t, err)

	// overridden by the subtype
	a, err := params.CapitalParameter("capital_a_parameter")
	assert.NilError(t, err)
	assert.Equal(t, a.Value, 120000.0)

	lift, err := params.Parameter("lift_height")
	assert.NilError(t, err)
	assert.Equal(t, lift.Value, 150.0)

	// inherited from the default entry
	b, err := params.CapitalParameter("capital_b_parameter")
	assert.NilError(t, err)
	assert.Equal(t, b.Value, 0.6)
}

func TestUnknownTechnology(t *testing.T) {
	db, err := New("jsondb_test_database.json")
	assert.NilError(t, err)

	_, err = db.GetUnitOperationParameters("cold_fusion", "")
	assert.Assert(t, errors.Is(err, database.ErrUnknownTechnology))
}

func TestUnknownSubtype(t *testing.T) {
	db, err := New("jsondb_test_database.json")
	assert.NilError(t, err)

	_, err = db.GetUnitOperationParameters("surface_discharge", "industrial")
	assert.Assert(t, errors.Is(err, database.ErrUnknownSubtype))
}

func TestMissingParameter(t *testing.T) {
	db, err := New("jsondb_test_database.json")
	assert.NilError(t, err)

	params, err := db.GetUnitOperationParameters("chlorination", "")
	assert.NilError(t, err)

	_, err = params.CapitalParameter("pipe_cost_basis")
	assert.Assert(t, errors.Is(err, database.ErrMissingParameter))

	_, err = params.Parameter("lift_height")
	assert.Assert(t, errors.Is(err, database.ErrMissingParameter))
}

func TestMissingDatabaseFile(t *testing.T) {
	_, err := New("no_such_database.json")
	assert.Assert(t, err != nil)
}
