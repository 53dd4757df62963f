package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/util/tags"
)

// FakeCloud is an in-memory EC2 and CloudFormation account. It embeds a
// MockClient whose funcs are wired to the store, so individual tests can
// still override single calls.
type FakeCloud struct {
	*aws.MockClient

	mu        sync.Mutex
	instances []*aws.Instance
	stacks    map[string]*aws.Stack
	tokens    map[string]string
	nextID    int

	Launches     int
	Terminations int
	StackCreates int
	StackDeletes int
}

// NewFakeCloud returns an empty account.
func NewFakeCloud() *FakeCloud {
	f := &FakeCloud{
		MockClient: &aws.MockClient{},
		stacks:     map[string]*aws.Stack{},
		tokens:     map[string]string{},
	}
	f.FindInstancesFunc = f.find
	f.LaunchInstanceFunc = f.launch
	f.WaitInstanceRunningFunc = f.waitRunning
	f.TerminateInstanceFunc = f.terminate
	f.WaitInstanceTerminatedFunc = func(context.Context, string, time.Duration) error { return nil }
	f.GetStackFunc = f.getStack
	f.CreateStackFunc = f.createStack
	f.WaitStackCreatedFunc = f.waitStackCreated
	f.DeleteStackFunc = f.deleteStack
	f.WaitStackDeletedFunc = func(context.Context, string, time.Duration) error { return nil }
	return f
}

func copyInstance(i *aws.Instance) *aws.Instance {
	c := *i
	c.Tags = make(map[string]string, len(i.Tags))
	for k, v := range i.Tags {
		c.Tags[k] = v
	}
	return &c
}

func live(state string) bool {
	for _, s := range aws.LiveStates {
		if s == state {
			return true
		}
	}
	return false
}

func (f *FakeCloud) find(_ context.Context, filter map[string]string) ([]*aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*aws.Instance
	for _, inst := range f.instances {
		if !live(inst.State) {
			continue
		}
		match := true
		for k, v := range filter {
			if inst.Tags[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, copyInstance(inst))
		}
	}
	return out, nil
}

func (f *FakeCloud) add(state string, t map[string]string) *aws.Instance {
	f.nextID++
	inst := &aws.Instance{
		ID:        fmt.Sprintf("i-%08d", f.nextID),
		PrivateIP: fmt.Sprintf("10.0.0.%d", f.nextID),
		State:     state,
		Tags:      t,
	}
	if state == "running" {
		inst.PublicIP = fmt.Sprintf("54.0.0.%d", f.nextID)
	}
	f.instances = append(f.instances, inst)
	return inst
}

func (f *FakeCloud) launch(_ context.Context, opts aws.LaunchOpts) (*aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if opts.ClientToken != "" {
		if id, ok := f.tokens[opts.ClientToken]; ok {
			for _, inst := range f.instances {
				if inst.ID == id {
					return copyInstance(inst), nil
				}
			}
		}
	}
	f.Launches++
	t := make(map[string]string, len(opts.Tags))
	for k, v := range opts.Tags {
		t[k] = v
	}
	inst := f.add("pending", t)
	if opts.ClientToken != "" {
		f.tokens[opts.ClientToken] = inst.ID
	}
	return copyInstance(inst), nil
}

func (f *FakeCloud) waitRunning(_ context.Context, id string, _ time.Duration) (*aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inst := range f.instances {
		if inst.ID == id {
			if inst.State == "pending" {
				inst.State = "running"
				inst.PublicIP = "54.0.0." + strings.TrimPrefix(inst.PrivateIP, "10.0.0.")
			}
			return copyInstance(inst), nil
		}
	}
	return nil, fmt.Errorf("instance %s not found", id)
}

func (f *FakeCloud) terminate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inst := range f.instances {
		if inst.ID == id {
			if inst.State != "terminated" {
				f.Terminations++
			}
			inst.State = "terminated"
			inst.PublicIP = ""
			return nil
		}
	}
	return fmt.Errorf("instance %s not found", id)
}

func (f *FakeCloud) getStack(_ context.Context, name string) (*aws.Stack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stacks[name]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (f *FakeCloud) createStack(_ context.Context, opts aws.StackCreateOpts) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stacks[opts.Name]; ok {
		return "", fmt.Errorf("stack %s already exists", opts.Name)
	}
	f.StackCreates++
	id := "arn:aws:cloudformation:us-east-1:000000000000:stack/" + opts.Name
	f.stacks[opts.Name] = &aws.Stack{
		Name:   opts.Name,
		ID:     id,
		Status: "CREATE_IN_PROGRESS",
		Outputs: map[string]string{
			"SubnetId":        "subnet-" + opts.Name,
			"SecurityGroupId": "sg-" + opts.Name,
		},
	}
	return id, nil
}

func (f *FakeCloud) waitStackCreated(_ context.Context, name string, _ time.Duration) (*aws.Stack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stacks[name]
	if !ok {
		return nil, fmt.Errorf("stack %s not found", name)
	}
	if s.Status == "CREATE_IN_PROGRESS" {
		s.Status = "CREATE_COMPLETE"
	}
	c := *s
	return &c, nil
}

func (f *FakeCloud) deleteStack(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stacks[name]; ok {
		f.StackDeletes++
		delete(f.stacks, name)
	}
	return nil
}

// AddInstance inserts a running instance of nodeType into stack.
func (f *FakeCloud) AddInstance(stack string, nodeType tags.NodeType) *aws.Instance {
	return f.AddInstanceInState(stack, nodeType, "running")
}

// AddInstanceInState inserts an instance of nodeType into stack in the given
// EC2 state. Only running instances get a public IP.
func (f *FakeCloud) AddInstanceInState(stack string, nodeType tags.NodeType, state string) *aws.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := tags.NewTagBuilder(stack).
		WithOwner("tester").
		WithKeyPair("test-key").
		WithNodeType(nodeType).
		Build()
	return copyInstance(f.add(state, t))
}

// AddStack inserts a completed CloudFormation stack.
func (f *FakeCloud) AddStack(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stacks[name] = &aws.Stack{
		Name:   name,
		ID:     "arn:aws:cloudformation:us-east-1:000000000000:stack/" + name,
		Status: "CREATE_COMPLETE",
		Outputs: map[string]string{
			"SubnetId":        "subnet-" + name,
			"SecurityGroupId": "sg-" + name,
		},
	}
}

// PopulateCluster adds the manager, master and workers a director
// bootstrap would create.
func (f *FakeCloud) PopulateCluster(stack string, workers int) {
	f.AddInstance(stack, tags.NodeManager)
	f.AddInstance(stack, tags.NodeMaster)
	for range workers {
		f.AddInstance(stack, tags.NodeWorker)
	}
}

// PopulateStack adds a complete stack: CloudFormation stack, launcher and cluster.
func (f *FakeCloud) PopulateStack(stack string, workers int) {
	f.AddStack(stack)
	f.AddInstance(stack, tags.NodeLauncher)
	f.PopulateCluster(stack, workers)
}

// LiveInstances returns copies of every live instance of stack.
func (f *FakeCloud) LiveInstances(stack string) []*aws.Instance {
	out, _ := f.find(context.Background(), tags.StackSelector(stack))
	return out
}

// HasStack reports whether the CloudFormation stack exists.
func (f *FakeCloud) HasStack(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.stacks[name]
	return ok
}
