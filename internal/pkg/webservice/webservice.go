// Package webservice exposes the latest flowsheet costing and performance
// reports over HTTP.
package webservice

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wtrsys/zeroflow/internal/pkg/msg"
	"github.com/wtrsys/zeroflow/internal/pkg/report"
)

// FlowsheetCost is the aggregate costing response.
type FlowsheetCost struct {
	TotalCapitalCost float64             `json:"TotalCapitalCost"`
	Currency         string              `json:"Currency"`
	Units            []report.CostRecord `json:"Units"`
}

// Webservice caches the most recent reports per unit and serves them.
type Webservice struct {
	mux   *sync.Mutex
	pid   uuid.UUID
	costs map[string]report.CostRecord
	perf  map[string][]report.PerfRecord
}

// New subscribes a webservice to the flowsheet's report topics.
func New(system msg.Publisher) (*Webservice, error) {
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	ws := &Webservice{
		mux:   &sync.Mutex{},
		pid:   pid,
		costs: make(map[string]report.CostRecord),
		perf:  make(map[string][]report.PerfRecord),
	}

	chCosting, err := system.Subscribe(pid, msg.Costing)
	if err != nil {
		return nil, err
	}
	go ws.drain(chCosting)

	chPerf, err := system.Subscribe(pid, msg.Performance)
	if err != nil {
		return nil, err
	}
	go ws.drain(chPerf)

	return ws, nil
}

func (ws *Webservice) drain(ch <-chan msg.Msg) {
	for m := range ch {
		switch p := m.Payload().(type) {
		case report.CostRecord:
			ws.mux.Lock()
			ws.costs[p.PID] = p
			ws.mux.Unlock()
		case []report.PerfRecord:
			if len(p) == 0 {
				continue
			}
			ws.mux.Lock()
			ws.perf[p[0].PID] = p
			ws.mux.Unlock()
		}
	}
}

// Router returns the HTTP route table.
func (ws *Webservice) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/flowsheet/cost", ws.FlowsheetCostHandler)
	router.HandleFunc("/unit/{pid}/cost", ws.UnitCostHandler)
	router.HandleFunc("/unit/{pid}/performance", ws.UnitPerformanceHandler)
	return router
}

// Serve blocks, serving the report routes on the address.
func (ws *Webservice) Serve(addr string) error {
	log.Println("[Webservice] serving on", addr)
	return http.ListenAndServe(addr, ws.Router())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	body, err := json.Marshal(v)
	if err != nil {
		log.Println("malformed JSON:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Println("write response:", err)
	}
}

// UnitCostHandler serves the cached cost record of one unit.
func (ws *Webservice) UnitCostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)
	if _, err := uuid.Parse(vars["pid"]); err != nil {
		log.Println("malformed UUID:", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ws.mux.Lock()
	rec, ok := ws.costs[vars["pid"]]
	ws.mux.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, rec)
}

// UnitPerformanceHandler serves the cached performance records of one unit.
func (ws *Webservice) UnitPerformanceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)
	if _, err := uuid.Parse(vars["pid"]); err != nil {
		log.Println("malformed UUID:", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ws.mux.Lock()
	recs, ok := ws.perf[vars["pid"]]
	ws.mux.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, recs)
}

// FlowsheetCostHandler serves the aggregate capital cost across all cached
// units.
func (ws *Webservice) FlowsheetCostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ws.mux.Lock()
	resp := FlowsheetCost{}
	for _, rec := range ws.costs {
		resp.TotalCapitalCost += rec.CapitalCost
		resp.Currency = rec.Currency
		resp.Units = append(resp.Units, rec)
	}
	ws.mux.Unlock()
	writeJSON(w, resp)
}
