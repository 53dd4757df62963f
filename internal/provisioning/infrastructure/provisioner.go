package infrastructure

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heuermh/eggo/internal/director"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/util/tags"
)

const phase = "infrastructure"

// Stack outputs and parameters of the network template.
const (
	OutputSubnetID        = "SubnetId"
	OutputSecurityGroupID = "SecurityGroupId"
	ParamAvailabilityZone = "AvailabilityZone"
)

// Provisioner handles the network stack.
type Provisioner struct{}

// NewProvisioner creates a new infrastructure provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface. An existing stack in
// a completed state is reused; any other existing state is an error.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	name := ctx.Config.StackName

	stack, err := ctx.Cloud.GetStack(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up stack %s: %w", name, err)
	}

	switch {
	case stack == nil:
		if stack, err = p.create(ctx); err != nil {
			return err
		}
	case stack.Reusable():
		provisioning.LogResourceExists(ctx.Observer, phase, "cloudformation stack", name, stack.ID)
		ctx.Observer.Printf("[%s] Stack %s already exists (%s). Reusing.", phase, name, stack.Status)
	default:
		return fmt.Errorf("stack %s exists in state %s and cannot be reused; run teardown first", name, stack.Status)
	}

	return p.recordOutputs(ctx, stack)
}

func (p *Provisioner) create(ctx *provisioning.Context) (*aws.Stack, error) {
	name := ctx.Config.StackName

	body, err := p.template(ctx)
	if err != nil {
		return nil, err
	}

	provisioning.LogResourceCreating(ctx.Observer, phase, "cloudformation stack", name)
	id, err := ctx.Cloud.CreateStack(ctx, aws.StackCreateOpts{
		Name:         name,
		TemplateBody: body,
		Parameters: map[string]string{
			ParamAvailabilityZone: ctx.Config.AvailabilityZone,
		},
		Tags: tags.NewTagBuilder(name).
			WithOwner(ctx.Config.Owner).
			Build(),
		ClientToken: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stack %s: %w", name, err)
	}

	stop := ctx.Spin(fmt.Sprintf("Waiting for stack %s", name))
	stack, err := ctx.Cloud.WaitStackCreated(ctx, name, ctx.Timeouts.StackCreate)
	stop()
	if err != nil {
		return nil, fmt.Errorf("stack %s did not reach CREATE_COMPLETE: %w", name, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "cloudformation stack", name, id)
	return stack, nil
}

func (p *Provisioner) template(ctx *provisioning.Context) (string, error) {
	ref := ctx.Config.Templates.CloudFormation
	if ref == "" {
		return director.DefaultCloudFormationTemplate(), nil
	}
	data, err := ctx.Templates.Read(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to load CloudFormation template: %w", err)
	}
	return string(data), nil
}

func (p *Provisioner) recordOutputs(ctx *provisioning.Context, stack *aws.Stack) error {
	subnet := stack.Outputs[OutputSubnetID]
	group := stack.Outputs[OutputSecurityGroupID]
	if subnet == "" || group == "" {
		return fmt.Errorf("stack %s is missing the %s or %s output", stack.Name, OutputSubnetID, OutputSecurityGroupID)
	}
	ctx.State.Stack = stack
	ctx.State.SubnetID = subnet
	ctx.State.SecurityGroupID = group
	return nil
}

// LoadOutputs reads the outputs of an existing stack into ctx.State without
// creating anything.
func LoadOutputs(ctx *provisioning.Context) error {
	name := ctx.Config.StackName
	stack, err := ctx.Cloud.GetStack(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up stack %s: %w", name, err)
	}
	if stack == nil {
		return fmt.Errorf("stack %s does not exist", name)
	}
	return (&Provisioner{}).recordOutputs(ctx, stack)
}
