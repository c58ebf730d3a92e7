package mocks

import (
	"crypto/rand"
	"errors"

	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure MockRandomSource implements RandomSource
var _ driven.RandomSource = (*MockRandomSource)(nil)

// MockRandomSource reads from crypto/rand and can be told to fail.
type MockRandomSource struct {
	Err   error
	Calls []int
}

// NewMockRandomSource creates a new MockRandomSource
func NewMockRandomSource() *MockRandomSource {
	return &MockRandomSource{}
}

func (m *MockRandomSource) Bytes(n int) ([]byte, error) {
	m.Calls = append(m.Calls, n)
	if m.Err != nil {
		return nil, m.Err
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ErrEntropyUnavailable is a canned random-source failure for tests.
var ErrEntropyUnavailable = errors.New("entropy unavailable")
