package handlers

import (
	"context"
	"fmt"

	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/provisioning/destroy"
	"github.com/heuermh/eggo/internal/ui"
)

// newDestroyProvisioner creates the teardown phase.
var newDestroyProvisioner = func() provisioning.Phase {
	return destroy.NewProvisioner()
}

// Teardown terminates the cluster, the launcher and the network stack after
// confirmation. assumeYes skips the prompt; without a terminal it is required.
func Teardown(ctx context.Context, g *Globals, assumeYes bool) error {
	return withSession(ctx, g, accessRemote, func(pCtx *provisioning.Context) error {
		stack := pCtx.Config.StackName
		err := ui.RequireConfirmation(pCtx, newConfirmer(), assumeYes, isInteractive(),
			fmt.Sprintf("Tear down stack %s?", stack),
			"The cluster, the launcher and the network stack will be deleted. This cannot be undone.")
		if err != nil {
			return err
		}
		if err := provisioning.RunPhases(pCtx, []provisioning.Phase{newDestroyProvisioner()}); err != nil {
			return err
		}
		ui.Success(stdout, "Stack %s torn down.", stack)
		return nil
	})
}
