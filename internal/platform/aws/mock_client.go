package aws

import (
	"context"
	"time"
)

// MockClient is a mock implementation of Client.
// Nil funcs fall back to empty successful results.
type MockClient struct {
	FindInstancesFunc          func(ctx context.Context, filter map[string]string) ([]*Instance, error)
	LaunchInstanceFunc         func(ctx context.Context, opts LaunchOpts) (*Instance, error)
	WaitInstanceRunningFunc    func(ctx context.Context, id string, timeout time.Duration) (*Instance, error)
	TerminateInstanceFunc      func(ctx context.Context, id string) error
	WaitInstanceTerminatedFunc func(ctx context.Context, id string, timeout time.Duration) error

	GetStackFunc         func(ctx context.Context, name string) (*Stack, error)
	CreateStackFunc      func(ctx context.Context, opts StackCreateOpts) (string, error)
	WaitStackCreatedFunc func(ctx context.Context, name string, timeout time.Duration) (*Stack, error)
	DeleteStackFunc      func(ctx context.Context, name string) error
	WaitStackDeletedFunc func(ctx context.Context, name string, timeout time.Duration) error

	CallerIdentityFunc func(ctx context.Context) (*Identity, error)
}

var _ Client = (*MockClient)(nil)

// FindInstances implements InstanceManager.
func (m *MockClient) FindInstances(ctx context.Context, filter map[string]string) ([]*Instance, error) {
	if m.FindInstancesFunc != nil {
		return m.FindInstancesFunc(ctx, filter)
	}
	return nil, nil
}

// LaunchInstance implements InstanceManager.
func (m *MockClient) LaunchInstance(ctx context.Context, opts LaunchOpts) (*Instance, error) {
	if m.LaunchInstanceFunc != nil {
		return m.LaunchInstanceFunc(ctx, opts)
	}
	return &Instance{ID: "i-mock", State: "pending", Tags: opts.Tags}, nil
}

// WaitInstanceRunning implements InstanceManager.
func (m *MockClient) WaitInstanceRunning(ctx context.Context, id string, timeout time.Duration) (*Instance, error) {
	if m.WaitInstanceRunningFunc != nil {
		return m.WaitInstanceRunningFunc(ctx, id, timeout)
	}
	return &Instance{ID: id, State: "running"}, nil
}

// TerminateInstance implements InstanceManager.
func (m *MockClient) TerminateInstance(ctx context.Context, id string) error {
	if m.TerminateInstanceFunc != nil {
		return m.TerminateInstanceFunc(ctx, id)
	}
	return nil
}

// WaitInstanceTerminated implements InstanceManager.
func (m *MockClient) WaitInstanceTerminated(ctx context.Context, id string, timeout time.Duration) error {
	if m.WaitInstanceTerminatedFunc != nil {
		return m.WaitInstanceTerminatedFunc(ctx, id, timeout)
	}
	return nil
}

// GetStack implements StackManager.
func (m *MockClient) GetStack(ctx context.Context, name string) (*Stack, error) {
	if m.GetStackFunc != nil {
		return m.GetStackFunc(ctx, name)
	}
	return nil, nil
}

// CreateStack implements StackManager.
func (m *MockClient) CreateStack(ctx context.Context, opts StackCreateOpts) (string, error) {
	if m.CreateStackFunc != nil {
		return m.CreateStackFunc(ctx, opts)
	}
	return "arn:aws:cloudformation:mock:stack/" + opts.Name, nil
}

// WaitStackCreated implements StackManager.
func (m *MockClient) WaitStackCreated(ctx context.Context, name string, timeout time.Duration) (*Stack, error) {
	if m.WaitStackCreatedFunc != nil {
		return m.WaitStackCreatedFunc(ctx, name, timeout)
	}
	return &Stack{Name: name, Status: "CREATE_COMPLETE", Outputs: map[string]string{}}, nil
}

// DeleteStack implements StackManager.
func (m *MockClient) DeleteStack(ctx context.Context, name string) error {
	if m.DeleteStackFunc != nil {
		return m.DeleteStackFunc(ctx, name)
	}
	return nil
}

// WaitStackDeleted implements StackManager.
func (m *MockClient) WaitStackDeleted(ctx context.Context, name string, timeout time.Duration) error {
	if m.WaitStackDeletedFunc != nil {
		return m.WaitStackDeletedFunc(ctx, name, timeout)
	}
	return nil
}

// CallerIdentity implements IdentityManager.
func (m *MockClient) CallerIdentity(ctx context.Context) (*Identity, error) {
	if m.CallerIdentityFunc != nil {
		return m.CallerIdentityFunc(ctx)
	}
	return &Identity{Account: "000000000000", ARN: "arn:aws:iam::000000000000:user/mock"}, nil
}
