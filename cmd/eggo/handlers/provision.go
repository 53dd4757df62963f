package handlers

import (
	"context"
	"time"

	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/provisioning/cluster"
	"github.com/heuermh/eggo/internal/provisioning/compute"
	"github.com/heuermh/eggo/internal/provisioning/infrastructure"
	"github.com/heuermh/eggo/internal/ui"
)

// newProvisionPipeline builds the provisioning phases.
var newProvisionPipeline = func() *provisioning.Pipeline {
	return provisioning.NewPipeline(
		provisioning.NewPreflightPhase(),
		infrastructure.NewProvisioner(),
		compute.NewProvisioner(),
		cluster.NewProvisioner(),
	)
}

// Provision creates the network stack and launcher and bootstraps the cluster.
func Provision(ctx context.Context, g *Globals) error {
	return withSession(ctx, g, accessProvision, func(pCtx *provisioning.Context) error {
		start := time.Now()
		if err := newProvisionPipeline().Run(pCtx); err != nil {
			return err
		}
		ui.Success(stdout, "Cluster has started. Took %d minutes.", provisioning.ElapsedMinutes(start))
		return nil
	})
}
