package aws

import (
	"context"
	"time"

	"github.com/heuermh/eggo/internal/util/tags"
)

// Instance is the subset of an EC2 instance the workflows use.
type Instance struct {
	ID        string
	PublicIP  string
	PrivateIP string
	State     string
	Tags      map[string]string
}

// Owner returns the owner tag.
func (i *Instance) Owner() string { return i.Tags[tags.KeyOwner] }

// KeyPair returns the ec2_key_pair tag.
func (i *Instance) KeyPair() string { return i.Tags[tags.KeyKeyPair] }

// StackName returns the eggo_stack_name tag.
func (i *Instance) StackName() string { return i.Tags[tags.KeyStackName] }

// NodeType returns the eggo_node_type tag.
func (i *Instance) NodeType() tags.NodeType { return tags.NodeType(i.Tags[tags.KeyNodeType]) }

// LiveStates are the instance states visible to discovery.
var LiveStates = []string{"pending", "running", "stopping", "stopped"}

// LaunchOpts holds all parameters for launching one instance.
type LaunchOpts struct {
	AMI             string
	InstanceType    string
	KeyName         string
	SubnetID        string
	SecurityGroupID string
	Tags            map[string]string
	// ClientToken makes the request idempotent on the EC2 side.
	ClientToken string
}

// Stack is a CloudFormation stack.
type Stack struct {
	Name    string
	ID      string
	Status  string
	Outputs map[string]string
}

// Reusable reports whether an existing stack can serve a new provisioning run.
func (s *Stack) Reusable() bool {
	return s.Status == "CREATE_COMPLETE" || s.Status == "UPDATE_COMPLETE"
}

// StackCreateOpts holds all parameters for creating a CloudFormation stack.
type StackCreateOpts struct {
	Name         string
	TemplateBody string
	Parameters   map[string]string
	Tags         map[string]string
	ClientToken  string
}

// Identity is the caller identity returned by STS.
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// InstanceManager defines the interface for managing EC2 instances.
type InstanceManager interface {
	// FindInstances returns live instances carrying every tag in filter,
	// in the order EC2 returns them.
	FindInstances(ctx context.Context, filter map[string]string) ([]*Instance, error)
	LaunchInstance(ctx context.Context, opts LaunchOpts) (*Instance, error)
	// WaitInstanceRunning blocks until the instance is running and returns
	// its refreshed description (with public IP).
	WaitInstanceRunning(ctx context.Context, id string, timeout time.Duration) (*Instance, error)
	TerminateInstance(ctx context.Context, id string) error
	WaitInstanceTerminated(ctx context.Context, id string, timeout time.Duration) error
}

// StackManager defines the interface for managing CloudFormation stacks.
type StackManager interface {
	// GetStack returns nil and no error when the stack does not exist.
	GetStack(ctx context.Context, name string) (*Stack, error)
	CreateStack(ctx context.Context, opts StackCreateOpts) (string, error)
	WaitStackCreated(ctx context.Context, name string, timeout time.Duration) (*Stack, error)
	DeleteStack(ctx context.Context, name string) error
	WaitStackDeleted(ctx context.Context, name string, timeout time.Duration) error
}

// IdentityManager resolves the credentials in use.
type IdentityManager interface {
	CallerIdentity(ctx context.Context) (*Identity, error)
}

// Client is the full cloud collaborator.
type Client interface {
	InstanceManager
	StackManager
	IdentityManager
}
