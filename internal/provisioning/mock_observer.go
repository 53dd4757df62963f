package provisioning

import (
	"fmt"
	"strings"
	"sync"
)

// MockObserver records everything written to it.
type MockObserver struct {
	mu     sync.Mutex
	lines  []string
	events []Event
}

// NewMockObserver creates an empty recording observer.
func NewMockObserver() *MockObserver {
	return &MockObserver{}
}

// Printf implements Logger.
func (m *MockObserver) Printf(format string, v ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (m *MockObserver) Event(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Progress implements Observer.
func (m *MockObserver) Progress(phase string, current, total int) {
	m.Printf("[%s] progress %d/%d", phase, current, total)
}

// WithFields implements Observer. Fields are dropped; output stays in m.
func (m *MockObserver) WithFields(map[string]string) Observer {
	return m
}

// Lines returns every Printf line.
func (m *MockObserver) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// Events returns every event.
func (m *MockObserver) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Contains reports whether any Printf line contains substr.
func (m *MockObserver) Contains(substr string) bool {
	for _, l := range m.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// EventsOfType returns the recorded events of type t.
func (m *MockObserver) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
