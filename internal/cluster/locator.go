package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/util/tags"
)

// Kind classifies a lookup result.
type Kind int

// Resolution kinds
const (
	NotFound Kind = iota
	Unique
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resolution is the outcome of one tag lookup.
type Resolution struct {
	Kind      Kind
	Instances []*aws.Instance
}

// Instance returns the match of a Unique resolution and nil otherwise.
func (r Resolution) Instance() *aws.Instance {
	if r.Kind != Unique {
		return nil
	}
	return r.Instances[0]
}

func resolve(instances []*aws.Instance) Resolution {
	switch len(instances) {
	case 0:
		return Resolution{Kind: NotFound}
	case 1:
		return Resolution{Kind: Unique, Instances: instances}
	default:
		return Resolution{Kind: Ambiguous, Instances: instances}
	}
}

// ResolutionError reports that a singleton role did not resolve to exactly one instance.
type ResolutionError struct {
	Stack    string
	NodeType tags.NodeType
	Kind     Kind
	Count    int
}

func (e *ResolutionError) Error() string {
	if e.Kind == NotFound {
		return fmt.Sprintf("no %s instance found for stack %q", e.NodeType, e.Stack)
	}
	return fmt.Sprintf("expected one %s instance for stack %q, found %d", e.NodeType, e.Stack, e.Count)
}

// IsNotFound reports whether err is a NotFound resolution error.
func IsNotFound(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Kind == NotFound
}

// IsAmbiguous reports whether err is an Ambiguous resolution error.
func IsAmbiguous(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Kind == Ambiguous
}

// Finder is the cloud query the locator needs.
type Finder interface {
	FindInstances(ctx context.Context, filter map[string]string) ([]*aws.Instance, error)
}

// Locator finds stack members by tag. It never mutates anything.
type Locator struct {
	finder Finder
}

// NewLocator creates a Locator backed by finder.
func NewLocator(finder Finder) *Locator {
	return &Locator{finder: finder}
}

// Locate returns every live instance of nodeType in stack, classified.
func (l *Locator) Locate(ctx context.Context, stack string, nodeType tags.NodeType) (Resolution, error) {
	instances, err := l.finder.FindInstances(ctx, tags.Selector(stack, nodeType))
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to look up %s instances for stack %s: %w", nodeType, stack, err)
	}
	return resolve(instances), nil
}

// One returns the single instance of a singleton role.
func (l *Locator) One(ctx context.Context, stack string, nodeType tags.NodeType) (*aws.Instance, error) {
	if !nodeType.Singleton() {
		return nil, fmt.Errorf("%s is not a singleton node type", nodeType)
	}
	res, err := l.Locate(ctx, stack, nodeType)
	if err != nil {
		return nil, err
	}
	if res.Kind != Unique {
		return nil, &ResolutionError{Stack: stack, NodeType: nodeType, Kind: res.Kind, Count: len(res.Instances)}
	}
	return res.Instance(), nil
}

// Launcher returns the stack's launcher.
func (l *Locator) Launcher(ctx context.Context, stack string) (*aws.Instance, error) {
	return l.One(ctx, stack, tags.NodeLauncher)
}

// Manager returns the stack's cluster-manager node.
func (l *Locator) Manager(ctx context.Context, stack string) (*aws.Instance, error) {
	return l.One(ctx, stack, tags.NodeManager)
}

// Master returns the stack's master node.
func (l *Locator) Master(ctx context.Context, stack string) (*aws.Instance, error) {
	return l.One(ctx, stack, tags.NodeMaster)
}

// Workers returns all workers in provider order. An empty slice is not an error.
func (l *Locator) Workers(ctx context.Context, stack string) ([]*aws.Instance, error) {
	res, err := l.Locate(ctx, stack, tags.NodeWorker)
	if err != nil {
		return nil, err
	}
	return res.Instances, nil
}

// Topology is every member of a stack.
type Topology struct {
	Launcher *aws.Instance
	Manager  *aws.Instance
	Master   *aws.Instance
	Workers  []*aws.Instance
}

// Hosts returns the manager, master and workers: the hosts running cluster-manager agents.
func (t *Topology) Hosts() []*aws.Instance {
	hosts := make([]*aws.Instance, 0, 2+len(t.Workers))
	hosts = append(hosts, t.Manager, t.Master)
	return append(hosts, t.Workers...)
}

// Topology resolves launcher, manager, master and workers in that order and
// stops at the first resolution error.
func (l *Locator) Topology(ctx context.Context, stack string) (*Topology, error) {
	var (
		t   Topology
		err error
	)
	if t.Launcher, err = l.Launcher(ctx, stack); err != nil {
		return nil, err
	}
	if t.Manager, err = l.Manager(ctx, stack); err != nil {
		return nil, err
	}
	if t.Master, err = l.Master(ctx, stack); err != nil {
		return nil, err
	}
	if t.Workers, err = l.Workers(ctx, stack); err != nil {
		return nil, err
	}
	return &t, nil
}

// ClusterHosts resolves manager, master and workers without requiring a launcher.
func (l *Locator) ClusterHosts(ctx context.Context, stack string) (*Topology, error) {
	var (
		t   Topology
		err error
	)
	if t.Manager, err = l.Manager(ctx, stack); err != nil {
		return nil, err
	}
	if t.Master, err = l.Master(ctx, stack); err != nil {
		return nil, err
	}
	if t.Workers, err = l.Workers(ctx, stack); err != nil {
		return nil, err
	}
	return &t, nil
}
