// Package executor defines the order-gateway boundary. The engine
// only ever sees success or failure; order lifecycle beyond that is
// the brokerage's problem.
package executor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kstocklab/kats/types"
)

type Executor interface {
	Submit(ctx context.Context, o types.Order) (types.OrderResult, error)
}

// PaperExecutor fills every valid order instantly against a cash
// balance. Used for dry runs and tests.
type PaperExecutor struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]int64
	avgCost   map[string]float64
	orders    []types.Order
}

func NewPaperExecutor(startCash float64) *PaperExecutor {
	return &PaperExecutor{
		cash:      startCash,
		positions: make(map[string]int64),
		avgCost:   make(map[string]float64),
	}
}

func (p *PaperExecutor) Submit(ctx context.Context, o types.Order) (types.OrderResult, error) {
	if err := types.ValidateOrder(o); err != nil {
		return types.OrderResult{Message: err.Error()}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	cost := o.Price * float64(o.Qty)
	switch o.Side {
	case types.Buy:
		if cost > p.cash {
			return types.OrderResult{Message: "insufficient cash"}, nil
		}
		held := p.positions[o.Code]
		p.cash -= cost
		p.positions[o.Code] = held + o.Qty
		// Weighted average cost over the merged position.
		p.avgCost[o.Code] = (p.avgCost[o.Code]*float64(held) + cost) / float64(held+o.Qty)
	case types.Sell:
		if p.positions[o.Code] < o.Qty {
			return types.OrderResult{Message: "insufficient position"}, nil
		}
		p.cash += cost
		p.positions[o.Code] -= o.Qty
		if p.positions[o.Code] == 0 {
			delete(p.avgCost, o.Code)
		}
	}
	p.orders = append(p.orders, o)
	return types.OrderResult{OrderID: uuid.NewString(), Success: true}, nil
}

// Cash returns the remaining balance.
func (p *PaperExecutor) Cash() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cash
}

// Position returns qty and average cost for a code.
func (p *PaperExecutor) Position(code string) (int64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positions[code], p.avgCost[code]
}

// Orders returns a copy of every filled order, for assertions.
func (p *PaperExecutor) Orders() []types.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.Order, len(p.orders))
	copy(out, p.orders)
	return out
}
