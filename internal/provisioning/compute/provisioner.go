package compute

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/director"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
	"github.com/heuermh/eggo/internal/util/tags"
)

const phase = "compute"

// Provisioner handles the launcher instance.
type Provisioner struct{}

// NewProvisioner creates a new compute provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface. A launcher already
// tagged for the stack is reused once it is running; otherwise one is created, waited on
// and prepared with the director client and the operator's key.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	stack := ctx.Config.StackName

	res, err := ctx.Locator.Locate(ctx, stack, tags.NodeLauncher)
	if err != nil {
		return err
	}
	switch res.Kind {
	case cluster.Unique:
		launcher, err := p.reuse(ctx, res.Instance())
		if err != nil {
			return err
		}
		ctx.Observer.Printf("Launcher instance (%s) already exists. Reusing.", launcher.PublicIP)
		provisioning.LogResourceExists(ctx.Observer, phase, "instance", "launcher", launcher.ID)
		ctx.State.Launcher = launcher
		ctx.State.LauncherReused = true
		return nil
	case cluster.Ambiguous:
		return &cluster.ResolutionError{Stack: stack, NodeType: tags.NodeLauncher, Kind: res.Kind, Count: len(res.Instances)}
	}

	launcher, err := p.launch(ctx)
	if err != nil {
		return err
	}
	ctx.State.Launcher = launcher

	if err := p.prepare(ctx, launcher); err != nil {
		return fmt.Errorf("failed to prepare launcher %s: %w", launcher.ID, err)
	}
	return nil
}

// reuse returns the existing launcher once it is running. A pending launcher
// is waited on; a stopping or stopped one cannot be used.
func (p *Provisioner) reuse(ctx *provisioning.Context, launcher *aws.Instance) (*aws.Instance, error) {
	switch launcher.State {
	case "running":
	case "pending":
		stop := ctx.Spin(fmt.Sprintf("Waiting for launcher %s", launcher.ID))
		running, err := ctx.Cloud.WaitInstanceRunning(ctx, launcher.ID, ctx.Timeouts.InstanceRunning)
		stop()
		if err != nil {
			return nil, fmt.Errorf("launcher %s did not reach running: %w", launcher.ID, err)
		}
		launcher = running
	default:
		return nil, fmt.Errorf("launcher %s is %s; start it or tear the stack down", launcher.ID, launcher.State)
	}
	if launcher.PublicIP == "" {
		return nil, fmt.Errorf("launcher %s has no public IP address", launcher.ID)
	}
	return launcher, nil
}

func (p *Provisioner) launch(ctx *provisioning.Context) (*aws.Instance, error) {
	cfg := ctx.Config
	if ctx.State.SubnetID == "" || ctx.State.SecurityGroupID == "" {
		return nil, fmt.Errorf("network stack outputs for %s are not loaded", cfg.StackName)
	}

	ctx.Observer.Printf("Creating launcher instance.")
	provisioning.LogResourceCreating(ctx.Observer, phase, "instance", "launcher")

	inst, err := ctx.Cloud.LaunchInstance(ctx, aws.LaunchOpts{
		AMI:             cfg.Launcher.AMI,
		InstanceType:    cfg.Launcher.InstanceType,
		KeyName:         cfg.AWS.KeyPair,
		SubnetID:        ctx.State.SubnetID,
		SecurityGroupID: ctx.State.SecurityGroupID,
		Tags: tags.NewTagBuilder(cfg.StackName).
			WithOwner(cfg.Owner).
			WithKeyPair(cfg.AWS.KeyPair).
			WithNodeType(tags.NodeLauncher).
			Build(),
		ClientToken: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch launcher instance: %w", err)
	}

	stop := ctx.Spin(fmt.Sprintf("Waiting for launcher %s", inst.ID))
	running, err := ctx.Cloud.WaitInstanceRunning(ctx, inst.ID, ctx.Timeouts.InstanceRunning)
	stop()
	if err != nil {
		return nil, fmt.Errorf("launcher %s did not reach running: %w", inst.ID, err)
	}
	if running.PublicIP == "" {
		return nil, fmt.Errorf("launcher %s has no public IP address", inst.ID)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "instance", "launcher", running.ID)
	return running, nil
}

func (p *Provisioner) prepare(ctx *provisioning.Context, launcher *aws.Instance) error {
	host := launcher.PublicIP
	if err := ctx.WaitForPort(ctx, host, ctx.Config.Remote.Port, ctx.Timeouts.SSHReady); err != nil {
		return fmt.Errorf("ssh on %s never became reachable: %w", host, err)
	}

	ctx.Observer.Printf("[%s] Installing director client on %s", phase, host)
	if err := remote.ExecSeq(ctx, ctx.Remote, host, director.InstallClient()...); err != nil {
		return err
	}
	return provisioning.InstallPrivateKey(ctx, host)
}
