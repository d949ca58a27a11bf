// Package costing implements the flowsheet costing pass: a shared aggregator
// of capital costs and cost-accounted flows, per-unit costing sub-blocks, and
// the capital cost formulas of the zero-order technology library.
package costing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/wtrsys/zeroflow/internal/pkg/database"
	"github.com/wtrsys/zeroflow/internal/pkg/quantity"
)

var (
	// ErrNegativeCapitalCost is returned when a costing method produces a
	// negative capital cost. Negative inputs are a configuration error the
	// caller should have excluded.
	ErrNegativeCapitalCost = errors.New("negative capital cost")
	// ErrNotCurrency is returned when a cost term does not reduce to the
	// aggregator's base currency.
	ErrNotCurrency = errors.New("quantity is not a currency")
)

// Coster is implemented by unit models that know how to cost themselves
// against a costing sub-block.
type Coster interface {
	Cost(*Block) error
}

// Aggregator is the flowsheet-level costing block. It collects per-unit
// capital costs and the operating flows registered for cost accounting.
type Aggregator struct {
	mux          *sync.Mutex
	pid          uuid.UUID
	baseCurrency quantity.Unit
	db           database.Store
	blocks       map[uuid.UUID]*Block
	order        []uuid.UUID
	flows        map[string]map[uuid.UUID]quantity.Quantity
}

// New returns an empty aggregator pricing in the given base currency against
// the given parameter store.
func New(baseCurrency quantity.Unit, db database.Store) (*Aggregator, error) {
	if (baseCurrency.Dim != quantity.Dimension{Currency: 1}) {
		return nil, fmt.Errorf("%w: base currency %s", ErrNotCurrency, baseCurrency.Name)
	}
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		mux:          &sync.Mutex{},
		pid:          pid,
		baseCurrency: baseCurrency,
		db:           db,
		blocks:       make(map[uuid.UUID]*Block),
		flows:        make(map[string]map[uuid.UUID]quantity.Quantity),
	}, nil
}

// PID is a getter for the aggregator PID.
func (a *Aggregator) PID() uuid.UUID {
	return a.pid
}

// BaseCurrency returns the currency all capital costs are expressed in.
func (a *Aggregator) BaseCurrency() quantity.Unit {
	return a.baseCurrency
}

// Database returns the technology parameter store.
func (a *Aggregator) Database() database.Store {
	return a.db
}

// NewBlock returns a fresh costing sub-block for the unit pid. A second call
// for the same pid replaces the previous block.
func (a *Aggregator) NewBlock(pid uuid.UUID) *Block {
	a.mux.Lock()
	defer a.mux.Unlock()
	blk := &Block{pid: pid, agg: a}
	if _, ok := a.blocks[pid]; !ok {
		a.order = append(a.order, pid)
	}
	a.blocks[pid] = blk
	return blk
}

// Block returns the costing sub-block registered for the unit pid.
func (a *Aggregator) Block(pid uuid.UUID) (*Block, bool) {
	a.mux.Lock()
	defer a.mux.Unlock()
	blk, ok := a.blocks[pid]
	return blk, ok
}

// CostFlow registers an operating quantity of the unit pid for cost
// accounting under the category label. Registration is keyed by (pid,
// category): a repeated registration replaces the held flow reference, so
// re-costing a unit cannot double the aggregate.
func (a *Aggregator) CostFlow(pid uuid.UUID, q quantity.Quantity, category string) {
	a.mux.Lock()
	defer a.mux.Unlock()
	reg, ok := a.flows[category]
	if !ok {
		reg = make(map[uuid.UUID]quantity.Quantity)
		a.flows[category] = reg
	}
	reg[pid] = q
}

// FlowCount returns the number of units holding a registered flow in the
// category.
func (a *Aggregator) FlowCount(category string) int {
	a.mux.Lock()
	defer a.mux.Unlock()
	return len(a.flows[category])
}

// FlowTotal sums the registered flows of a category in the given unit.
func (a *Aggregator) FlowTotal(category string, in quantity.Unit) (quantity.Quantity, error) {
	a.mux.Lock()
	defer a.mux.Unlock()
	total := quantity.New(0, in)
	for pid, q := range a.flows[category] {
		c, err := q.Convert(in)
		if err != nil {
			return quantity.Quantity{}, fmt.Errorf("flow %q of unit %s: %w", category, pid, err)
		}
		total.Value += c.Value
	}
	return total, nil
}

// TotalCapitalCost sums the capital costs of all costed blocks in the base
// currency.
func (a *Aggregator) TotalCapitalCost() quantity.Quantity {
	a.mux.Lock()
	defer a.mux.Unlock()
	total := quantity.New(0, a.baseCurrency)
	for _, pid := range a.order {
		blk := a.blocks[pid]
		if blk.costed {
			total.Value += blk.capitalCost.Value
		}
	}
	return total
}

// Block is the costing sub-block associated with one unit.
type Block struct {
	pid         uuid.UUID
	agg         *Aggregator
	costFactor  quantity.Quantity
	capitalCost quantity.Quantity
	costed      bool
}

// PID returns the PID of the unit this block costs.
func (b *Block) PID() uuid.UUID {
	return b.pid
}

// Database returns the shared parameter store.
func (b *Block) Database() database.Store {
	return b.agg.Database()
}

// BaseCurrency returns the aggregator's base currency.
func (b *Block) BaseCurrency() quantity.Unit {
	return b.agg.BaseCurrency()
}

// CostFlow registers an operating flow of this block's unit with the shared
// aggregator.
func (b *Block) CostFlow(q quantity.Quantity, category string) {
	b.agg.CostFlow(b.pid, q, category)
}

// SetCapitalCost records the block's cost factor and capital cost. The
// capital cost is converted to the base currency and must be non-negative.
func (b *Block) SetCapitalCost(costFactor, capitalCost quantity.Quantity) error {
	cc, err := capitalCost.Convert(b.agg.BaseCurrency())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotCurrency, capitalCost.Unit.Name)
	}
	if cc.Value < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeCapitalCost, cc)
	}
	b.costFactor = costFactor
	b.capitalCost = cc
	b.costed = true
	return nil
}

// Costed reports whether a costing method has populated this block.
func (b *Block) Costed() bool {
	return b.costed
}

// CostFactor returns the installation cost markup applied by the costing
// method.
func (b *Block) CostFactor() quantity.Quantity {
	return b.costFactor
}

// CapitalCost returns the unit's capital cost in the base currency.
func (b *Block) CapitalCost() quantity.Quantity {
	return b.capitalCost
}
