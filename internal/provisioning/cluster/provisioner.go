package cluster

import (
	"fmt"

	"github.com/heuermh/eggo/internal/director"
	"github.com/heuermh/eggo/internal/provisioning"
)

const phase = "cluster"

// Provisioner handles the director bootstrap.
type Provisioner struct{}

// NewProvisioner creates a new cluster provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface. Bootstrap is not
// idempotent: running it against a stack that already has a cluster is left
// to the director to reject.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	launcher := ctx.State.Launcher
	if launcher == nil {
		var err error
		if launcher, err = ctx.Locator.Launcher(ctx, ctx.Config.StackName); err != nil {
			return err
		}
	}
	if ctx.State.SubnetID == "" || ctx.State.SecurityGroupID == "" {
		return fmt.Errorf("network stack outputs for %s are not loaded", ctx.Config.StackName)
	}

	conf, err := p.render(ctx)
	if err != nil {
		return err
	}

	host := launcher.PublicIP
	home := ctx.Home()
	if err := ctx.Remote.Put(ctx, host, []byte(conf), director.ConfPath(home), 0o600); err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", director.ConfFile, host, err)
	}

	ctx.Observer.Printf("[%s] Bootstrapping %d workers from %s", phase, ctx.Config.Cluster.NumWorkers, host)
	stop := ctx.Spin("Bootstrapping cluster (this takes a while)")
	_, err = ctx.Remote.Exec(ctx, host, director.Bootstrap(home))
	stop()
	if err != nil {
		return fmt.Errorf("director bootstrap failed: %w", err)
	}
	return nil
}

func (p *Provisioner) render(ctx *provisioning.Context) (string, error) {
	tmpl := director.DefaultDirectorTemplate()
	if ref := ctx.Config.Templates.Director; ref != "" {
		data, err := ctx.Templates.Read(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("failed to load director template: %w", err)
		}
		tmpl = string(data)
	}

	cfg := ctx.Config
	conf, err := director.RenderBootstrap(tmpl, director.BootstrapParams{
		AccessKeyID:        cfg.AWS.AccessKeyID,
		SecretAccessKey:    cfg.AWS.SecretAccessKey,
		Region:             cfg.Region,
		StackName:          cfg.StackName,
		Owner:              cfg.Owner,
		KeyName:            cfg.AWS.KeyPair,
		SubnetID:           ctx.State.SubnetID,
		SecurityGroupIDs:   ctx.State.SecurityGroupID,
		Image:              cfg.Cluster.AMI,
		NumWorkers:         cfg.Cluster.NumWorkers,
		WorkerInstanceType: cfg.Cluster.WorkerInstanceType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render director template: %w", err)
	}
	return conf, nil
}
