package provisioning

import (
	"context"
	"time"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/config"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/platform/s3"
	"github.com/heuermh/eggo/internal/platform/ssh"
	"github.com/heuermh/eggo/internal/remote"
	"github.com/heuermh/eggo/internal/util/netutil"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Preflight results
	Identity *aws.Identity

	// Infrastructure results
	Stack           *aws.Stack
	SubnetID        string
	SecurityGroupID string

	// Compute results
	Launcher       *aws.Instance
	LauncherReused bool
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// TemplateSource reads a template from a local path or an s3:// URI.
type TemplateSource interface {
	Read(ctx context.Context, ref string) ([]byte, error)
}

// PortWaiter blocks until host:port accepts TCP connections.
type PortWaiter func(ctx context.Context, host string, port int, timeout time.Duration) error

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config    *config.Config
	State     *State
	Cloud     aws.Client
	Locator   *cluster.Locator
	Remote    remote.Executor
	Tunnels   ssh.Opener
	Templates TemplateSource
	Observer  Observer
	Timeouts  *config.Timeouts

	// WaitForPort defaults to netutil.WaitForPort.
	WaitForPort PortWaiter

	// Spin starts a progress indicator for a long wait and returns its stop
	// function. Defaults to a no-op.
	Spin func(message string) (stop func())
}

// NewContext creates a new provisioning context.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	cloud aws.Client,
	exec remote.Executor,
	tunnels ssh.Opener,
) *Context {
	timeouts := cfg.Timeouts
	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}
	return &Context{
		Context:     ctx,
		Config:      cfg,
		State:       NewState(),
		Cloud:       cloud,
		Locator:     cluster.NewLocator(cloud),
		Remote:      exec,
		Tunnels:     tunnels,
		Templates:   s3.NewSource(cfg.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey),
		Observer:    NewConsoleObserver(),
		Timeouts:    timeouts,
		WaitForPort: netutil.WaitForPort,
		Spin:        func(string) func() { return func() {} },
	}
}

// Home returns the remote user's home directory.
func (c *Context) Home() string {
	return c.Config.Remote.HomeDir()
}
