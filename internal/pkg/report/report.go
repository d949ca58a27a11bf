// Package report defines the serialized form of unit performance and costing
// results, shared by the msg payloads, the webservice, and the CSV export.
package report

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/wtrsys/zeroflow/internal/pkg/unit"
)

// CostRecord is one unit's capital cost result.
type CostRecord struct {
	PID         string  `json:"PID" csv:"pid"`
	Unit        string  `json:"Unit" csv:"unit"`
	TechType    string  `json:"TechType" csv:"tech_type"`
	Subtype     string  `json:"Subtype" csv:"subtype"`
	CapitalCost float64 `json:"CapitalCost" csv:"capital_cost"`
	Currency    string  `json:"Currency" csv:"currency"`
}

// PerfRecord is one value of one performance variable, flattened to a row
// per time index for export.
type PerfRecord struct {
	PID       string  `json:"PID" csv:"pid"`
	Unit      string  `json:"Unit" csv:"unit"`
	Label     string  `json:"Label" csv:"label"`
	TimeIndex int     `json:"TimeIndex" csv:"time_index"`
	Value     float64 `json:"Value" csv:"value"`
	Units     string  `json:"Units" csv:"units"`
}

// PerfRecords flattens a unit's performance variables, preserving the
// declared label strings.
func PerfRecords(u unit.Unit) []PerfRecord {
	var recs []PerfRecord
	for _, v := range u.PerfVars() {
		for t, q := range v.Values {
			recs = append(recs, PerfRecord{
				PID:       u.PID().String(),
				Unit:      u.Name(),
				Label:     v.Label,
				TimeIndex: t,
				Value:     q.Value,
				Units:     q.Unit.Name,
			})
		}
	}
	return recs
}

// WriteCostCSV writes cost records as CSV.
func WriteCostCSV(w io.Writer, recs []CostRecord) error {
	return gocsv.Marshal(&recs, w)
}

// WritePerfCSV writes performance records as CSV.
func WritePerfCSV(w io.Writer, recs []PerfRecord) error {
	return gocsv.Marshal(&recs, w)
}
