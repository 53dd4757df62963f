package destroy

import (
	"fmt"

	"github.com/heuermh/eggo/internal/director"
	"github.com/heuermh/eggo/internal/provisioning"
)

// Provisioner handles stack teardown.
type Provisioner struct{}

// NewProvisioner creates a new destroy provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string {
	return "teardown"
}

// Provision terminates the cluster, the launcher and the network stack, in
// that order.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	stack := ctx.Config.StackName
	launcher, err := ctx.Locator.Launcher(ctx, stack)
	if err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] Terminating the cluster from launcher %s", p.Name(), launcher.ID)
	stop := ctx.Spin("Waiting for Cloudera Director to terminate the cluster")
	_, err = ctx.Remote.Exec(ctx, launcher.PublicIP, director.Terminate(ctx.Home()))
	stop()
	if err != nil {
		return fmt.Errorf("director terminate failed: %w", err)
	}

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "launcher", launcher.ID)
	if err := ctx.Cloud.TerminateInstance(ctx, launcher.ID); err != nil {
		return fmt.Errorf("failed to terminate launcher %s: %w", launcher.ID, err)
	}
	stop = ctx.Spin("Waiting for the launcher to terminate")
	err = ctx.Cloud.WaitInstanceTerminated(ctx, launcher.ID, ctx.Timeouts.InstanceTerminated)
	stop()
	if err != nil {
		return err
	}
	provisioning.LogResourceDeleted(ctx.Observer, p.Name(), "launcher", launcher.ID)

	provisioning.LogResourceDeleting(ctx.Observer, p.Name(), "stack", stack)
	if err := ctx.Cloud.DeleteStack(ctx, stack); err != nil {
		return fmt.Errorf("failed to delete stack %s: %w", stack, err)
	}
	stop = ctx.Spin("Waiting for the stack to be deleted")
	err = ctx.Cloud.WaitStackDeleted(ctx, stack, ctx.Timeouts.StackDelete)
	stop()
	if err != nil {
		return err
	}
	provisioning.LogResourceDeleted(ctx.Observer, p.Name(), "stack", stack)
	return nil
}
