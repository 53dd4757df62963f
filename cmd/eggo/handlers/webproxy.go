package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/platform/ssh"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/ui"
)

// WebTunnel is one web interface forwarded to localhost.
type WebTunnel struct {
	Name string
	Host *aws.Instance
	Port int
}

// WebTunnels lists the cluster web interfaces. Each is forwarded to the same
// port on localhost.
func WebTunnels(topo *cluster.Topology) []WebTunnel {
	return []WebTunnel{
		{Name: "CM WebUI", Host: topo.Manager, Port: 7180},
		{Name: "YARN RM", Host: topo.Master, Port: 8088},
		{Name: "YARN JobHistory", Host: topo.Master, Port: 19888},
	}
}

// Spec returns the tunnel spec through the host's public address.
func (w WebTunnel) Spec() ssh.TunnelSpec {
	return ssh.TunnelSpec{
		BastionHost: w.Host.PublicIP,
		RemoteHost:  w.Host.PrivateIP,
		RemotePort:  w.Port,
		LocalPort:   webLocalPort(w.Port),
	}
}

var (
	// webLocalPort maps a remote port to the local one.
	webLocalPort = func(remotePort int) int { return remotePort }

	// proxyReady is called once every tunnel is open.
	proxyReady = func([]*ssh.Tunnel) {}
)

// WebProxy forwards the cluster web interfaces to localhost until interrupted
// or until any tunnel dies. All tunnels are closed on return.
func WebProxy(ctx context.Context, g *Globals) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withSession(ctx, g, accessRemote, func(pCtx *provisioning.Context) (err error) {
		topo, err := pCtx.Locator.Topology(pCtx, pCtx.Config.StackName)
		if err != nil {
			return err
		}

		webs := WebTunnels(topo)
		tunnels := make([]*ssh.Tunnel, 0, len(webs))
		defer func() {
			if cerr := closeTunnels(tunnels); cerr != nil && err == nil {
				err = cerr
			}
		}()

		rows := make([]ui.TunnelRow, 0, len(webs))
		for _, w := range webs {
			t, err := pCtx.Tunnels.Open(pCtx, w.Spec())
			if err != nil {
				return fmt.Errorf("failed to open %s tunnel: %w", w.Name, err)
			}
			tunnels = append(tunnels, t)
			rows = append(rows, ui.TunnelRow{
				Name:       w.Name,
				PublicIP:   w.Host.PublicIP,
				PrivateIP:  w.Host.PrivateIP,
				RemotePort: w.Port,
				LocalPort:  t.LocalPort,
			})
		}
		ui.RenderTunnels(stdout, rows)
		proxyReady(tunnels)

		i, died := waitAny(pCtx, tunnels)
		if !died {
			return nil
		}
		if terr := tunnels[i].Err(); terr != nil {
			return fmt.Errorf("%s tunnel closed: %w", webs[i].Name, terr)
		}
		return fmt.Errorf("%s tunnel closed", webs[i].Name)
	})
}

// waitAny blocks until ctx is done or a tunnel stops. It returns the index of
// the stopped tunnel and true, or false when ctx ended first.
func waitAny(ctx context.Context, tunnels []*ssh.Tunnel) (int, bool) {
	dead := make(chan int, len(tunnels))
	for i, t := range tunnels {
		go func() {
			select {
			case <-t.Done():
				dead <- i
			case <-ctx.Done():
			}
		}()
	}
	select {
	case <-ctx.Done():
		return -1, false
	case i := <-dead:
		return i, true
	}
}

func closeTunnels(tunnels []*ssh.Tunnel) error {
	var result *multierror.Error
	for _, t := range tunnels {
		if err := t.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
