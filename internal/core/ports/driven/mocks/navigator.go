package mocks

import (
	"net/url"

	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure MockNavigator implements Navigator
var _ driven.Navigator = (*MockNavigator)(nil)

// MockNavigator records navigation instead of performing it.
type MockNavigator struct {
	current  *url.URL
	Assigned []string
	Replaced []string
}

// NewMockNavigator creates a MockNavigator positioned at href
func NewMockNavigator(href string) *MockNavigator {
	u, err := url.Parse(href)
	if err != nil {
		panic(err)
	}
	return &MockNavigator{current: u}
}

func (m *MockNavigator) Location() *url.URL {
	u := *m.current
	return &u
}

func (m *MockNavigator) Assign(target string) {
	m.Assigned = append(m.Assigned, target)
	m.current = m.resolve(target)
}

func (m *MockNavigator) ReplaceState(target string) {
	m.Replaced = append(m.Replaced, target)
	m.current = m.resolve(target)
}

// Href returns the current location as a string.
func (m *MockNavigator) Href() string {
	return m.current.String()
}

// LastAssigned returns the most recent navigation target, or "".
func (m *MockNavigator) LastAssigned() string {
	if len(m.Assigned) == 0 {
		return ""
	}
	return m.Assigned[len(m.Assigned)-1]
}

func (m *MockNavigator) resolve(target string) *url.URL {
	ref, err := url.Parse(target)
	if err != nil {
		return m.current
	}
	return m.current.ResolveReference(ref)
}
