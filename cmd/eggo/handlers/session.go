// Package handlers implements the business logic for CLI commands.
//
// Handlers load configuration, build the cloud and remote clients and run
// the workflows in the provisioning packages. Every external dependency is
// created through a package-level factory variable so tests can swap it.
package handlers

import (
	"context"
	"io"
	"os"

	"github.com/heuermh/eggo/internal/config"
	"github.com/heuermh/eggo/internal/log"
	"github.com/heuermh/eggo/internal/metrics"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/platform/ssh"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
	"github.com/heuermh/eggo/internal/ui"
)

// Globals carries the root command's persistent flags.
type Globals struct {
	ConfigPath  string
	Region      string
	StackName   string
	LogLevel    string
	LogJSON     bool
	MetricsFile string
}

// Remote bundles the SSH-backed executor and tunnel opener.
type Remote struct {
	Executor remote.Executor
	Tunnels  ssh.Opener
	Close    func() error
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newCloud = func(ctx context.Context, cfg *config.Config) (aws.Client, error) {
		return aws.NewRealClient(ctx, cfg.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
	}

	newRemote = func(cfg *config.Config) (*Remote, error) {
		key, err := cfg.ReadPrivateKey()
		if err != nil {
			return nil, err
		}
		timeouts := cfg.Timeouts
		if timeouts == nil {
			timeouts = config.LoadTimeouts()
		}
		client, err := ssh.NewClient(&ssh.Config{
			Port:       cfg.Remote.Port,
			User:       cfg.Remote.User,
			PrivateKey: key,
			MaxRetries: timeouts.RetryMaxAttempts,
			RetryDelay: timeouts.RetryInitialDelay,
		})
		if err != nil {
			return nil, err
		}
		exec := ssh.NewExecutor(client)
		return &Remote{Executor: exec, Tunnels: ssh.NewForwarder(client), Close: exec.Close}, nil
	}

	newProvisioningContext = provisioning.NewContext

	newConfirmer = func() ui.Confirmer { return ui.HuhConfirmer{} }

	isInteractive = ui.IsInputTerminal

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// InitLogging configures the global logger from the persistent flags.
func InitLogging(g *Globals) error {
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	log.Init(log.Config{Level: level, JSONOutput: g.LogJSON})
	return nil
}

// access describes what a command needs beyond the cloud client.
type access int

const (
	accessCloud access = iota
	accessRemote
	accessManager
	accessProvision
)

func (a access) validate(cfg *config.Config) error {
	switch a {
	case accessRemote:
		return cfg.ValidateForRemote()
	case accessManager:
		return cfg.ValidateForManager()
	case accessProvision:
		return cfg.ValidateForProvision()
	default:
		return cfg.Validate()
	}
}

// resolveConfig loads the configuration and applies flag overrides.
func resolveConfig(g *Globals) (*config.Config, error) {
	cfg, err := loadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.Region != "" {
		cfg.Region = g.Region
	}
	if g.StackName != "" {
		cfg.StackName = g.StackName
	}
	return cfg, nil
}

// withSession validates the configuration for a, builds the clients and runs
// fn with a provisioning context. Metrics are written afterwards when requested.
func withSession(ctx context.Context, g *Globals, a access, fn func(*provisioning.Context) error) (err error) {
	defer func() {
		if g.MetricsFile == "" {
			return
		}
		if werr := metrics.WriteTextfile(g.MetricsFile); werr != nil {
			log.Logger.Warn().Err(werr).Str("path", g.MetricsFile).Msg("failed to write metrics")
		}
	}()

	cfg, err := resolveConfig(g)
	if err != nil {
		return err
	}
	if err := a.validate(cfg); err != nil {
		return err
	}

	cloud, err := newCloud(ctx, cfg)
	if err != nil {
		return err
	}

	var exec remote.Executor
	var tunnels ssh.Opener
	if a != accessCloud {
		r, err := newRemote(cfg)
		if err != nil {
			return err
		}
		if r.Close != nil {
			defer func() { _ = r.Close() }()
		}
		exec, tunnels = r.Executor, r.Tunnels
	}

	pCtx := newProvisioningContext(ctx, cfg, cloud, exec, tunnels)
	pCtx.Spin = func(message string) func() {
		sp := ui.NewSpinner(stderr, message, ui.IsTerminal())
		sp.Start()
		return sp.Stop
	}
	return fn(pCtx)
}
