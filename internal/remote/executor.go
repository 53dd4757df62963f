package remote

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/heuermh/eggo/internal/util/async"
)

// Executor runs commands on stack hosts addressed by IP or hostname.
type Executor interface {
	// Exec runs cmd and returns its combined output. A non-zero exit
	// status is returned as *Error.
	Exec(ctx context.Context, host string, cmd Command) (string, error)
	// Put writes content to path on host with mode.
	Put(ctx context.Context, host string, content []byte, path string, mode os.FileMode) error
	// Shell attaches the local terminal to an interactive login shell.
	Shell(ctx context.Context, host string) error
}

// Error is a failed remote command.
type Error struct {
	Host    string
	Command string
	Output  string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("command failed on %s: %v\nCommand: %s", e.Host, e.Err, e.Command)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\nOutput: " + out
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parallel runs fn once per host concurrently. The first failure cancels the
// context passed to the others; every failure is returned, aggregated.
func Parallel(ctx context.Context, hosts []string, fn func(ctx context.Context, host string) error) error {
	tasks := make([]async.Task, 0, len(hosts))
	for _, h := range hosts {
		tasks = append(tasks, async.Task{
			Name: h,
			Func: func(ctx context.Context) error { return fn(ctx, h) },
		})
	}
	return async.RunParallel(ctx, tasks)
}

// ExecAll runs cmd on every host in parallel.
func ExecAll(ctx context.Context, ex Executor, hosts []string, cmd Command) error {
	return Parallel(ctx, hosts, func(ctx context.Context, host string) error {
		_, err := ex.Exec(ctx, host, cmd)
		return err
	})
}

// ExecSeq runs cmds on host in order and stops at the first failure.
func ExecSeq(ctx context.Context, ex Executor, host string, cmds ...Command) error {
	for _, cmd := range cmds {
		if _, err := ex.Exec(ctx, host, cmd); err != nil {
			return err
		}
	}
	return nil
}

// Append adds each line to the file at path unless an identical line is already there.
func Append(ctx context.Context, ex Executor, host, path string, lines ...string) error {
	for _, line := range lines {
		script := fmt.Sprintf("touch %[2]s && (grep -qxF -- %[1]s %[2]s || echo %[1]s >> %[2]s)", Quote(line), Quote(path))
		if _, err := ex.Exec(ctx, host, Run(script)); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether path exists on host.
func Exists(ctx context.Context, ex Executor, host, path string) (bool, error) {
	out, err := ex.Exec(ctx, host, Run(fmt.Sprintf("if test -e %s; then echo yes; else echo no; fi", Quote(path))))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "yes", nil
}
