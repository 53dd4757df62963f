package cm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/heuermh/eggo/internal/log"
	"github.com/heuermh/eggo/internal/metrics"
)

// Command is a handle on an in-flight manager command.
type Command struct {
	ID   int64
	Name string

	client *Client
	first  CommandInfo

	mu       sync.Mutex
	consumed bool
}

func newCommand(c *Client, info CommandInfo) *Command {
	return &Command{ID: info.ID, Name: info.Name, client: c, first: info}
}

// Wait polls the command until it is no longer active. It returns a
// *CommandError when the command finished unsuccessfully and
// ErrCommandConsumed when the handle was already waited on.
func (cmd *Command) Wait(ctx context.Context) error {
	cmd.mu.Lock()
	if cmd.consumed {
		cmd.mu.Unlock()
		return ErrCommandConsumed
	}
	cmd.consumed = true
	cmd.mu.Unlock()

	start := time.Now()
	err := cmd.poll(ctx)
	metrics.RecordManagerCommand(cmd.Name, time.Since(start).Seconds(), err)
	return err
}

func (cmd *Command) poll(ctx context.Context) error {
	logger := log.WithComponent("cm")
	ctx, cancel := context.WithTimeout(ctx, cmd.client.waitTimeout)
	defer cancel()

	b := &backoff.Backoff{
		Min:    cmd.client.pollInterval,
		Max:    maxPollInterval,
		Factor: 1.5,
	}

	info := cmd.first
	for info.Active {
		delay := b.Duration()
		logger.Debug().Int64("id", cmd.ID).Str("command", cmd.Name).Dur("delay", delay).Msg("command active")

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for command %s (%d): %w", cmd.Name, cmd.ID, ctx.Err())
		case <-time.After(delay):
		}

		refreshed, err := cmd.client.Command(ctx, cmd.ID)
		if err != nil {
			return fmt.Errorf("refreshing command %s (%d): %w", cmd.Name, cmd.ID, err)
		}
		info = *refreshed
	}

	if !info.Success {
		return &CommandError{ID: cmd.ID, Name: cmd.Name, Message: info.ResultMessage}
	}
	logger.Debug().Int64("id", cmd.ID).Str("command", cmd.Name).Msg("command finished")
	return nil
}
