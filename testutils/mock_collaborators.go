package testutils

import (
	"context"
	"sync"

	"github.com/kstocklab/kats/marketdata"
	"github.com/kstocklab/kats/types"
)

// MockSearcher returns a canned condition-search result.
type MockSearcher struct {
	mu     sync.Mutex
	Result types.SearchResult
	Err    error
	calls  int
}

func (m *MockSearcher) Search(ctx context.Context, conditionIDs []int) (types.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return types.SearchResult{}, m.Err
	}
	return m.Result, nil
}

func (m *MockSearcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockBarFetcher serves canned bar windows per code. Errs, when set
// for a code, takes precedence over Bars.
type MockBarFetcher struct {
	mu    sync.Mutex
	Bars  map[string][]types.PriceBar
	Errs  map[string]error
	calls map[string]int
}

func (m *MockBarFetcher) FetchBars(ctx context.Context, code string, g marketdata.Granularity) ([]types.PriceBar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[code]++
	if err, ok := m.Errs[code]; ok && err != nil {
		return nil, err
	}
	return m.Bars[code], nil
}

// FetchCount returns how many times a code was requested.
func (m *MockBarFetcher) FetchCount(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[code]
}
