package address

import (
	"context"
	"sync"
)

// MockLookuper is a test implementation of Lookuper.
// Calls are recorded; LookupFunc decides the result.
type MockLookuper struct {
	LookupFunc func(ctx context.Context, postalCode string) (*Address, error)

	mu    sync.Mutex
	calls []string
}

// NewMockLookuper creates a mock that answers from a fixed table.
// Codes missing from the table yield ErrNotFound.
func NewMockLookuper(known map[string]Address) *MockLookuper {
	return &MockLookuper{
		LookupFunc: func(ctx context.Context, postalCode string) (*Address, error) {
			addr, ok := known[postalCode]
			if !ok {
				return nil, ErrNotFound
			}
			return &addr, nil
		},
	}
}

// Lookup delegates to LookupFunc after enforcing the postal code precondition.
func (m *MockLookuper) Lookup(ctx context.Context, postalCode string) (*Address, error) {
	if !IsPostalCode(postalCode) {
		return nil, ErrInvalidPostalCode
	}

	m.mu.Lock()
	m.calls = append(m.calls, postalCode)
	m.mu.Unlock()

	if m.LookupFunc == nil {
		return nil, ErrNotFound
	}
	return m.LookupFunc(ctx, postalCode)
}

// Calls returns the postal codes looked up so far.
func (m *MockLookuper) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
