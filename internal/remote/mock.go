package remote

import (
	"context"
	"os"
	"sync"
)

// Call is one recorded executor invocation.
type Call struct {
	Op      string // exec, put or shell
	Host    string
	Command Command
	Path    string
	Content []byte
	Mode    os.FileMode
}

// MockExecutor records every call. Nil funcs succeed with empty output.
type MockExecutor struct {
	ExecFunc  func(ctx context.Context, host string, cmd Command) (string, error)
	PutFunc   func(ctx context.Context, host string, content []byte, path string, mode os.FileMode) error
	ShellFunc func(ctx context.Context, host string) error

	mu    sync.Mutex
	calls []Call
}

var _ Executor = (*MockExecutor)(nil)

func (m *MockExecutor) record(c Call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// Exec implements Executor.
func (m *MockExecutor) Exec(ctx context.Context, host string, cmd Command) (string, error) {
	m.record(Call{Op: "exec", Host: host, Command: cmd})
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, host, cmd)
	}
	return "", nil
}

// Put implements Executor.
func (m *MockExecutor) Put(ctx context.Context, host string, content []byte, path string, mode os.FileMode) error {
	m.record(Call{Op: "put", Host: host, Path: path, Content: append([]byte(nil), content...), Mode: mode})
	if m.PutFunc != nil {
		return m.PutFunc(ctx, host, content, path, mode)
	}
	return nil
}

// Shell implements Executor.
func (m *MockExecutor) Shell(ctx context.Context, host string) error {
	m.record(Call{Op: "shell", Host: host})
	if m.ShellFunc != nil {
		return m.ShellFunc(ctx, host)
	}
	return nil
}

// Calls returns a copy of every recorded call in order.
func (m *MockExecutor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Scripts returns the scripts executed on host in order.
func (m *MockExecutor) Scripts(host string) []string {
	var out []string
	for _, c := range m.Calls() {
		if c.Op == "exec" && c.Host == host {
			out = append(out, c.Command.Script)
		}
	}
	return out
}

// Puts returns the uploads made to host in order.
func (m *MockExecutor) Puts(host string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Op == "put" && c.Host == host {
			out = append(out, c)
		}
	}
	return out
}
