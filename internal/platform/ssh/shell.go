package ssh

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// Shell implements remote.Executor. When Stdin is a terminal it is switched to
// raw mode for the duration of the session and restored afterwards.
func (e *Executor) Shell(ctx context.Context, host string) error {
	session, err := e.session(ctx, host)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	width, height := 80, 24
	if f, ok := e.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set terminal to raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, state) }()
		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
	}

	termType := os.Getenv("TERM")
	if termType == "" {
		termType = "xterm-256color"
	}
	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty(termType, height, width, modes); err != nil {
		return fmt.Errorf("failed to request pty on %s: %w", host, err)
	}

	session.Stdin = e.Stdin
	session.Stdout = e.Stdout
	session.Stderr = e.Stderr

	if err := session.Shell(); err != nil {
		return fmt.Errorf("failed to start shell on %s: %w", host, err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			if exitErr, ok := err.(*ssh.ExitError); ok {
				return fmt.Errorf("shell on %s exited with status %d", host, exitErr.ExitStatus())
			}
			return fmt.Errorf("shell on %s failed: %w", host, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
