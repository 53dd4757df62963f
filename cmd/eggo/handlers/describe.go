package handlers

import (
	"context"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/ui"
)

// Describe prints the launcher, manager, master and workers of the stack.
func Describe(ctx context.Context, g *Globals) error {
	return withSession(ctx, g, accessCloud, func(pCtx *provisioning.Context) error {
		topo, err := pCtx.Locator.Topology(pCtx, pCtx.Config.StackName)
		if err != nil {
			return err
		}
		ui.RenderNodes(stdout, nodeRows(topo))
		return nil
	})
}

func nodeRows(topo *cluster.Topology) []ui.NodeRow {
	row := func(role string, i *aws.Instance) ui.NodeRow {
		return ui.NodeRow{Role: role, PublicIP: i.PublicIP, PrivateIP: i.PrivateIP}
	}
	rows := []ui.NodeRow{
		row("Launcher", topo.Launcher),
		row("Manager", topo.Manager),
		row("Master", topo.Master),
	}
	for _, w := range topo.Workers {
		rows = append(rows, row("Worker", w))
	}
	return rows
}
