package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/crypto/ssh"

	"github.com/heuermh/eggo/internal/log"
)

// Dialer opens connections from the far side of a tunnel. *ssh.Client satisfies it.
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
}

// TunnelSpec describes one local port forward through a bastion host.
type TunnelSpec struct {
	// BastionHost is the public address eggo connects to over SSH.
	BastionHost string
	// RemoteHost and RemotePort are dialed from the bastion.
	RemoteHost string
	RemotePort int
	// LocalPort is bound on 127.0.0.1. Zero picks a free port.
	LocalPort int
}

// RemoteAddr returns host:port of the forwarded service.
func (s TunnelSpec) RemoteAddr() string {
	return net.JoinHostPort(s.RemoteHost, strconv.Itoa(s.RemotePort))
}

// Tunnel forwards connections accepted on a local port to a remote address.
type Tunnel struct {
	LocalPort int

	listener net.Listener
	dialer   Dialer
	remote   string
	closer   io.Closer

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
	closing   bool
	conns     map[net.Conn]struct{}
	wg        sync.WaitGroup
}

// NewTunnel listens on 127.0.0.1:localPort and forwards every accepted
// connection to remoteAddr through dialer.
func NewTunnel(dialer Dialer, localPort int, remoteAddr string) (*Tunnel, error) {
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(localPort)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on local port %d: %w", localPort, err)
	}

	t := &Tunnel{
		LocalPort: l.Addr().(*net.TCPAddr).Port,
		listener:  l,
		dialer:    dialer,
		remote:    remoteAddr,
		done:      make(chan struct{}),
		conns:     make(map[net.Conn]struct{}),
	}
	t.wg.Add(1)
	go t.acceptLoop()
	return t, nil
}

// Done is closed when the tunnel stops, either through Close or a failure.
func (t *Tunnel) Done() <-chan struct{} {
	return t.done
}

// Err returns why the tunnel stopped. It is nil while running and after Close.
func (t *Tunnel) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Close stops listening, drops active connections and closes the bastion
// connection. It is safe to call more than once.
func (t *Tunnel) Close() error {
	var result *multierror.Error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closing = true
		for c := range t.conns {
			_ = c.Close()
		}
		t.mu.Unlock()

		if err := t.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			result = multierror.Append(result, err)
		}
		// A forward blocked in Dial only returns once the bastion connection is gone.
		if t.closer != nil {
			if err := t.closer.Close(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
				result = multierror.Append(result, err)
			}
		}
		t.wg.Wait()
		close(t.done)
	})
	return result.ErrorOrNil()
}

// fail records err and shuts the tunnel down.
func (t *Tunnel) fail(err error) {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		return
	}
	if t.err == nil {
		t.err = err
	}
	t.mu.Unlock()
	go func() { _ = t.Close() }()
}

func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				t.fail(fmt.Errorf("accept on port %d: %w", t.LocalPort, err))
			}
			return
		}
		if !t.track(conn) {
			_ = conn.Close()
			return
		}
		t.wg.Add(1)
		go t.forward(conn)
	}
}

func (t *Tunnel) track(c net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closing {
		return false
	}
	t.conns[c] = struct{}{}
	return true
}

func (t *Tunnel) isClosing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closing
}

func (t *Tunnel) untrack(c net.Conn) {
	t.mu.Lock()
	delete(t.conns, c)
	t.mu.Unlock()
	_ = c.Close()
}

func (t *Tunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer t.untrack(local)

	remote, err := t.dialer.Dial("tcp", t.remote)
	if err != nil {
		if !t.isClosing() {
			log.WithComponent("tunnel").Warn().Err(err).Str("remote", t.remote).Msg("forward failed")
		}
		return
	}
	if !t.track(remote) {
		_ = remote.Close()
		return
	}
	defer t.untrack(remote)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(remote, local)
		closeWrite(remote)
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(local, remote)
		closeWrite(local)
	}()
	wg.Wait()
}

func closeWrite(c net.Conn) {
	if cw, ok := c.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
		return
	}
	_ = c.Close()
}

// Opener opens tunnels.
type Opener interface {
	Open(ctx context.Context, spec TunnelSpec) (*Tunnel, error)
}

// Forwarder opens tunnels through SSH connections to bastion hosts.
type Forwarder struct {
	client *Client
}

// NewForwarder creates a Forwarder authenticating with client.
func NewForwarder(client *Client) *Forwarder {
	return &Forwarder{client: client}
}

// Open dials the bastion and starts forwarding. Each tunnel owns its SSH
// connection; if that connection drops the tunnel stops with an error.
func (f *Forwarder) Open(ctx context.Context, spec TunnelSpec) (*Tunnel, error) {
	conn, err := f.client.Dial(ctx, spec.BastionHost)
	if err != nil {
		return nil, err
	}

	t, err := NewTunnel(conn, spec.LocalPort, spec.RemoteAddr())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	t.closer = conn

	go func(c *ssh.Client) {
		err := c.Wait()
		if err == nil {
			err = io.EOF
		}
		t.fail(fmt.Errorf("ssh connection to %s closed: %w", spec.BastionHost, err))
	}(conn)

	log.WithComponent("tunnel").Debug().
		Str("bastion", spec.BastionHost).
		Str("remote", spec.RemoteAddr()).
		Int("local_port", t.LocalPort).
		Msg("tunnel open")
	return t, nil
}

// WithTunnel opens a tunnel, runs fn with its local port and closes the
// tunnel on every exit path, including a panic inside fn.
func WithTunnel(ctx context.Context, opener Opener, spec TunnelSpec, fn func(localPort int) error) (err error) {
	t, err := opener.Open(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to open tunnel to %s via %s: %w", spec.RemoteAddr(), spec.BastionHost, err)
	}
	defer func() {
		if cerr := t.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close tunnel: %w", cerr)
		}
	}()
	return fn(t.LocalPort)
}
