package handlers

import (
	"context"
	"time"

	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/provisioning/configure"
	"github.com/heuermh/eggo/internal/ui"
)

// ConfigCluster installs the toolchain and the selected packages on the cluster.
func ConfigCluster(ctx context.Context, g *Globals, opts configure.Options) error {
	return withSession(ctx, g, accessManager, func(pCtx *provisioning.Context) error {
		start := time.Now()
		if err := configure.NewConfigurer(opts).Run(pCtx); err != nil {
			return err
		}
		ui.Success(stdout, "Cluster configured. Took %d minutes.", provisioning.ElapsedMinutes(start))
		return nil
	})
}

// InstallEnvVars writes the cluster endpoint variables on the master.
func InstallEnvVars(ctx context.Context, g *Globals) error {
	return withSession(ctx, g, accessManager, func(pCtx *provisioning.Context) error {
		topo, err := pCtx.Locator.ClusterHosts(pCtx, pCtx.Config.StackName)
		if err != nil {
			return err
		}
		return configure.InstallEnvVars(pCtx, topo)
	})
}

// AdjustYarnMemoryLimits sizes YARN to the cluster instances.
func AdjustYarnMemoryLimits(ctx context.Context, g *Globals, restart bool) error {
	return withSession(ctx, g, accessManager, func(pCtx *provisioning.Context) error {
		manager, err := pCtx.Locator.Manager(pCtx, pCtx.Config.StackName)
		if err != nil {
			return err
		}
		return configure.AdjustYarnMemoryLimits(pCtx, manager, restart)
	})
}
