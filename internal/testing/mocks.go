package testing

import (
	"context"
	"net"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/heuermh/eggo/internal/platform/ssh"
)

// MockConfirmer is a testify mock of ui.Confirmer.
type MockConfirmer struct {
	mock.Mock
}

// Confirm records the prompt and returns the configured answer.
func (m *MockConfirmer) Confirm(ctx context.Context, title, description string) (bool, error) {
	args := m.Called(ctx, title, description)
	return args.Bool(0), args.Error(1)
}

// loopbackDialer ignores the requested address and dials target instead.
type loopbackDialer struct {
	target string
}

func (d loopbackDialer) Dial(network, _ string) (net.Conn, error) {
	return net.Dial(network, d.target)
}

// LoopbackOpener opens tunnels that forward to Target on this machine,
// standing in for a bastion hop. Opened specs are recorded.
type LoopbackOpener struct {
	Target string

	mu    sync.Mutex
	specs []ssh.TunnelSpec
}

// Open implements ssh.Opener.
func (o *LoopbackOpener) Open(_ context.Context, spec ssh.TunnelSpec) (*ssh.Tunnel, error) {
	o.mu.Lock()
	o.specs = append(o.specs, spec)
	o.mu.Unlock()
	return ssh.NewTunnel(loopbackDialer{target: o.Target}, spec.LocalPort, spec.RemoteAddr())
}

// Specs returns every spec passed to Open.
func (o *LoopbackOpener) Specs() []ssh.TunnelSpec {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]ssh.TunnelSpec(nil), o.specs...)
}
