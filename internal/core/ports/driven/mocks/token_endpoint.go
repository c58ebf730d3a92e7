package mocks

import (
	"context"
	"sync"

	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure MockTokenEndpoint implements TokenEndpoint
var _ driven.TokenEndpoint = (*MockTokenEndpoint)(nil)

// MockTokenEndpoint returns a canned response and records every exchange.
type MockTokenEndpoint struct {
	mu       sync.Mutex
	requests []driven.CodeExchange

	Response *driven.TokenResponse
	Err      error
}

// NewMockTokenEndpoint creates a MockTokenEndpoint answering with resp
func NewMockTokenEndpoint(resp *driven.TokenResponse) *MockTokenEndpoint {
	return &MockTokenEndpoint{Response: resp}
}

func (m *MockTokenEndpoint) ExchangeCode(ctx context.Context, req driven.CodeExchange) (*driven.TokenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	resp := *m.Response
	return &resp, nil
}

// Requests returns the exchanges performed so far.
func (m *MockTokenEndpoint) Requests() []driven.CodeExchange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.CodeExchange(nil), m.requests...)
}
