// Package flowsheet assembles unit operations and drives the one-shot
// costing pass over them.
package flowsheet

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/wtrsys/zeroflow/internal/pkg/costing"
	"github.com/wtrsys/zeroflow/internal/pkg/msg"
	"github.com/wtrsys/zeroflow/internal/pkg/report"
	"github.com/wtrsys/zeroflow/internal/pkg/unit"
)

// Flowsheet is a registry of unit operations. It publishes performance and
// costing reports as units are priced.
type Flowsheet struct {
	mux    *sync.Mutex
	pid    uuid.UUID
	name   string
	pubsub *msg.PubSub
	units  map[uuid.UUID]unit.Unit
	order  []uuid.UUID
}

// New returns an empty flowsheet.
func New(name string) (*Flowsheet, error) {
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	return &Flowsheet{
		mux:    &sync.Mutex{},
		pid:    pid,
		name:   name,
		pubsub: msg.NewPublisher(pid),
		units:  make(map[uuid.UUID]unit.Unit),
	}, nil
}

// PID is a getter for the flowsheet PID.
func (f *Flowsheet) PID() uuid.UUID {
	return f.pid
}

// Name is a getter for the flowsheet name.
func (f *Flowsheet) Name() string {
	return f.name
}

// AddUnit registers a unit operation with the flowsheet.
func (f *Flowsheet) AddUnit(u unit.Unit) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if _, ok := f.units[u.PID()]; ok {
		return fmt.Errorf("unit %v already registered", u.PID())
	}
	f.units[u.PID()] = u
	f.order = append(f.order, u.PID())
	return nil
}

// Units returns the registered units in insertion order.
func (f *Flowsheet) Units() []unit.Unit {
	f.mux.Lock()
	defer f.mux.Unlock()
	units := make([]unit.Unit, 0, len(f.order))
	for _, pid := range f.order {
		units = append(units, f.units[pid])
	}
	return units
}

// Subscribe returns a read only channel for flowsheet reports on the topic.
func (f *Flowsheet) Subscribe(pid uuid.UUID, topic msg.Topic) (<-chan msg.Msg, error) {
	return f.pubsub.Subscribe(pid, topic)
}

// Unsubscribe closes the report channels associated with the pid.
func (f *Flowsheet) Unsubscribe(pid uuid.UUID) {
	f.pubsub.Unsubscribe(pid)
}

// Stop closes all report channels.
func (f *Flowsheet) Stop() {
	f.pubsub.Stop()
}

// CostUnits runs the costing pass: each unit with a costing method is priced
// against a fresh sub-block of the aggregator, and its reports are
// published. Units are independent, so a failure aborts the pass without
// touching the remaining units.
func (f *Flowsheet) CostUnits(agg *costing.Aggregator) error {
	for _, u := range f.Units() {
		coster, ok := u.(costing.Coster)
		if !ok {
			log.Printf("[Flowsheet] %v has no costing method, skipped", u.Name())
			continue
		}

		blk := agg.NewBlock(u.PID())
		if err := coster.Cost(blk); err != nil {
			return fmt.Errorf("costing pass: %w", err)
		}

		f.pubsub.Publish(msg.Performance, report.PerfRecords(u))
		f.pubsub.Publish(msg.Costing, report.CostRecord{
			PID:         u.PID().String(),
			Unit:        u.Name(),
			TechType:    u.TechType(),
			Subtype:     u.Subtype(),
			CapitalCost: blk.CapitalCost().Value,
			Currency:    blk.CapitalCost().Unit.Name,
		})
	}
	return nil
}
