package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/heuermh/eggo/internal/log"
	"github.com/heuermh/eggo/internal/metrics"
	"github.com/heuermh/eggo/internal/remote"
)

// Executor implements remote.Executor over SSH. Connections are cached per
// host and reused by later commands; Close releases them.
type Executor struct {
	client *Client

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	mu    sync.Mutex
	conns map[string]*ssh.Client
}

var _ remote.Executor = (*Executor)(nil)

// NewExecutor creates an executor using client for every host.
func NewExecutor(client *Client) *Executor {
	return &Executor{
		client: client,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		conns:  make(map[string]*ssh.Client),
	}
}

func (e *Executor) conn(ctx context.Context, host string) (*ssh.Client, error) {
	e.mu.Lock()
	c, ok := e.conns[host]
	e.mu.Unlock()
	if ok {
		return c, nil
	}

	c, err := e.client.Dial(ctx, host)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.conns[host]; ok {
		_ = c.Close()
		return existing, nil
	}
	e.conns[host] = c
	return c, nil
}

func (e *Executor) evict(host string, c *ssh.Client) {
	e.mu.Lock()
	if e.conns[host] == c {
		delete(e.conns, host)
	}
	e.mu.Unlock()
	_ = c.Close()
}

// session opens a session on host, redialing once if the cached connection died.
func (e *Executor) session(ctx context.Context, host string) (*ssh.Session, error) {
	for attempt := 0; ; attempt++ {
		c, err := e.conn(ctx, host)
		if err != nil {
			return nil, err
		}
		s, err := c.NewSession()
		if err == nil {
			return s, nil
		}
		e.evict(host, c)
		if attempt > 0 {
			return nil, fmt.Errorf("failed to create SSH session on %s: %w", host, err)
		}
	}
}

// Exec implements remote.Executor.
func (e *Executor) Exec(ctx context.Context, host string, cmd remote.Command) (string, error) {
	line := cmd.String()
	logger := log.WithHost(host)
	logger.Debug().Str("command", line).Msg("exec")

	out, err := e.run(ctx, host, line)
	metrics.RecordRemoteCommand(err)
	if err != nil {
		return out, &remote.Error{Host: host, Command: line, Output: out, Err: err}
	}
	return out, nil
}

func (e *Executor) run(ctx context.Context, host, line string) (string, error) {
	session, err := e.session(ctx, host)
	if err != nil {
		return "", err
	}
	defer func() { _ = session.Close() }()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(line)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		return string(r.out), r.err
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		_ = session.Close()
		return "", ctx.Err()
	}
}

// Put implements remote.Executor. The parent directory is created if needed.
func (e *Executor) Put(ctx context.Context, host string, content []byte, dest string, mode os.FileMode) error {
	c, err := e.conn(ctx, host)
	if err != nil {
		return err
	}

	client, err := SFTPClient(c)
	if err != nil {
		return fmt.Errorf("failed to start sftp on %s: %w", host, err)
	}
	defer func() { _ = client.Close() }()

	if dir := path.Dir(dest); dir != "." && dir != "/" {
		if err := client.MkdirAll(dir); err != nil {
			return fmt.Errorf("failed to create %s on %s: %w", dir, host, err)
		}
	}

	f, err := client.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("failed to create %s on %s: %w", dest, host, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s on %s: %w", dest, host, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s on %s: %w", dest, host, err)
	}
	if err := client.Chmod(dest, mode); err != nil {
		return fmt.Errorf("failed to chmod %s on %s: %w", dest, host, err)
	}

	log.WithHost(host).Debug().Str("path", dest).Int("bytes", len(content)).Msg("uploaded")
	return nil
}

// Close closes every cached connection.
func (e *Executor) Close() error {
	e.mu.Lock()
	conns := e.conns
	e.conns = make(map[string]*ssh.Client)
	e.mu.Unlock()

	var result *multierror.Error
	for host, c := range conns {
		if err := c.Close(); err != nil && !errors.Is(err, io.EOF) {
			result = multierror.Append(result, fmt.Errorf("%s: %w", host, err))
		}
	}
	return result.ErrorOrNil()
}

// SFTPClient is like sftp.NewClient(), but the underlying write side is
// mutex protected so a close racing an in-flight write cannot corrupt state.
func SFTPClient(conn *ssh.Client) (*sftp.Client, error) {
	s, err := conn.NewSession()
	if err != nil {
		return nil, err
	}
	if err = s.RequestSubsystem("sftp"); err != nil {
		_ = s.Close()
		return nil, err
	}
	pw, err := s.StdinPipe()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	pr, err := s.StdoutPipe()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return sftp.NewClientPipe(pr, &threadSafeWriteCloser{WriteCloser: pw})
}

type threadSafeWriteCloser struct {
	io.WriteCloser
	sync.Mutex
}

func (c *threadSafeWriteCloser) Write(p []byte) (int, error) {
	c.Lock()
	defer c.Unlock()
	return c.WriteCloser.Write(p)
}

func (c *threadSafeWriteCloser) Close() error {
	c.Lock()
	defer c.Unlock()
	return c.WriteCloser.Close()
}
