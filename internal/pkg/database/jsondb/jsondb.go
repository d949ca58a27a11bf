// Package jsondb backs the parameter store with a JSON technology database
// file loaded once at startup.
package jsondb

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/wtrsys/zeroflow/internal/pkg/database"
)

// Database is a read-only, file-backed parameter store.
type Database struct {
	techs map[string]techRecord
}

type techRecord struct {
	Default  paramSet            `json:"default"`
	Subtypes map[string]paramSet `json:"subtypes"`
}

// paramSet mirrors one database block: a nested capital_cost entry among
// flat performance scalars.
type paramSet struct {
	capital map[string]database.Entry
	scalars map[string]database.Entry
}

func (p *paramSet) UnmarshalJSON(b []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	p.capital = make(map[string]database.Entry)
	p.scalars = make(map[string]database.Entry)
	for name, val := range raw {
		if name == "capital_cost" {
			if err := json.Unmarshal(val, &p.capital); err != nil {
				return fmt.Errorf("capital_cost: %w", err)
			}
			continue
		}
		var e database.Entry
		if err := json.Unmarshal(val, &e); err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		p.scalars[name] = e
	}
	return nil
}

// New loads the technology database from a JSON file.
func New(path string) (Database, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Database{}, err
	}

	techs := make(map[string]techRecord)
	if err := json.Unmarshal(raw, &techs); err != nil {
		return Database{}, fmt.Errorf("parameter database %s: %w", path, err)
	}

	return Database{techs: techs}, nil
}

// GetUnitOperationParameters returns the merged parameter set for the
// technology, with subtype entries overlaid on the default entry. An empty
// subtype selects the default entry alone.
func (d Database) GetUnitOperationParameters(techType string, subtype string) (database.Parameters, error) {
	rec, ok := d.techs[techType]
	if !ok {
		return database.Parameters{}, fmt.Errorf("%w: %q", database.ErrUnknownTechnology, techType)
	}

	scalars := make(map[string]database.Entry, len(rec.Default.scalars))
	capital := make(map[string]database.Entry, len(rec.Default.capital))
	for k, v := range rec.Default.scalars {
		scalars[k] = v
	}
	for k, v := range rec.Default.capital {
		capital[k] = v
	}

	if subtype != "" {
		sub, ok := rec.Subtypes[subtype]
		if !ok {
			return database.Parameters{}, fmt.Errorf("%w: %q for technology %q", database.ErrUnknownSubtype, subtype, techType)
		}
		for k, v := range sub.scalars {
			scalars[k] = v
		}
		for k, v := range sub.capital {
			capital[k] = v
		}
	}

	return database.NewParameters(techType, subtype, scalars, capital), nil
}
