package provisioning

import (
	"fmt"

	"github.com/heuermh/eggo/internal/director"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/platform/cm"
	"github.com/heuermh/eggo/internal/platform/ssh"
)

// InstallPrivateKey copies the operator's private key to ~/id.pem on host
// with mode 0600.
func InstallPrivateKey(ctx *Context, host string) error {
	key, err := ctx.Config.ReadPrivateKey()
	if err != nil {
		return err
	}
	if err := ctx.Remote.Put(ctx, host, key, director.KeyPath(ctx.Home()), 0o600); err != nil {
		return fmt.Errorf("failed to install private key on %s: %w", host, err)
	}
	return nil
}

// ManagerTunnel returns the tunnel spec reaching the manager API through the
// manager's public address.
func ManagerTunnel(ctx *Context, manager *aws.Instance) ssh.TunnelSpec {
	return ssh.TunnelSpec{
		BastionHost: manager.PublicIP,
		RemoteHost:  manager.PrivateIP,
		RemotePort:  ctx.Config.Manager.Port,
		LocalPort:   ctx.Config.Manager.LocalPort,
	}
}

// WithManager opens a scoped tunnel to the manager API and runs fn with a
// client bound to it. The tunnel is closed when fn returns.
func WithManager(ctx *Context, manager *aws.Instance, fn func(*cm.Client) error) error {
	mc := ctx.Config.Manager
	return ssh.WithTunnel(ctx, ctx.Tunnels, ManagerTunnel(ctx, manager), func(localPort int) error {
		client := cm.NewClient(
			cm.BaseURL("127.0.0.1", localPort, mc.APIVersion),
			mc.Username, mc.Password,
			cm.WithPollInterval(ctx.Timeouts.CommandPoll),
			cm.WithWaitTimeout(ctx.Timeouts.CommandWait),
		)
		return fn(client)
	})
}
