package provisioning

import (
	"fmt"

	"github.com/heuermh/eggo/internal/platform/aws"
)

// PreflightPhase validates the configuration and resolves the caller identity
// before anything is created.
type PreflightPhase struct{}

// NewPreflightPhase creates a new preflight phase.
func NewPreflightPhase() *PreflightPhase {
	return &PreflightPhase{}
}

// Name implements the Phase interface.
func (p *PreflightPhase) Name() string {
	return "preflight"
}

// Provision implements the Phase interface.
func (p *PreflightPhase) Provision(ctx *Context) error {
	if err := ctx.Config.ValidateForProvision(); err != nil {
		return err
	}

	id, err := ctx.Cloud.CallerIdentity(ctx)
	if err != nil {
		if aws.IsAuthFailure(err) {
			return fmt.Errorf("AWS rejected the configured credentials: %w", err)
		}
		return fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	ctx.State.Identity = id
	ctx.Observer.Printf("[preflight] Using AWS account %s as %s", id.Account, id.ARN)
	return nil
}
