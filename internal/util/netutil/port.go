// Package netutil provides TCP reachability helpers.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// SSHPort is the port probed before connecting to a freshly launched host.
	SSHPort = 22

	defaultProbeInterval = time.Second
	defaultDialTimeout   = 2 * time.Second
)

// ErrPortTimeout is returned when a port does not open within the timeout.
var ErrPortTimeout = errors.New("timed out waiting for port")

// WaitForPort waits for a TCP port to accept connections on host.
// It probes once immediately and then every second until the timeout.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	return waitForPort(ctx, host, port, timeout, defaultProbeInterval)
}

func waitForPort(ctx context.Context, host string, port int, timeout, interval time.Duration) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if Reachable(ctx, address) {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrPortTimeout, address)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Reachable reports whether address accepts a TCP connection.
func Reachable(ctx context.Context, address string) bool {
	conn, err := (&net.Dialer{Timeout: defaultDialTimeout}).DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// FreePort asks the kernel for an unused local TCP port.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find a free port: %w", err)
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}
