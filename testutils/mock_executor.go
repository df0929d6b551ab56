package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/kstocklab/kats/types"
)

// MockExecutor implements executor.Executor in-memory, recording every
// order for assertions. FailWith / Reject steer the outcome.
type MockExecutor struct {
	mu     sync.Mutex
	orders []types.Order

	// FailWith, when set, is returned as the error of every Submit.
	FailWith error
	// Reject, when true, returns Success=false without an error.
	Reject bool
}

func NewMockExecutor() *MockExecutor { return &MockExecutor{} }

func (m *MockExecutor) Submit(ctx context.Context, o types.Order) (types.OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return types.OrderResult{}, m.FailWith
	}
	if m.Reject {
		return types.OrderResult{Message: "rejected"}, nil
	}
	m.orders = append(m.orders, o)
	return types.OrderResult{
		OrderID: fmt.Sprintf("mock-%d", len(m.orders)),
		Success: true,
	}, nil
}

// Orders returns a copy of all submitted orders.
func (m *MockExecutor) Orders() []types.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
