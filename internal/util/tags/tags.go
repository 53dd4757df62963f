package tags

import (
	"fmt"
	"strings"
)

// Tag keys written to every managed instance.
const (
	// KeyOwner identifies the operator who created the instance
	KeyOwner = "owner"

	// KeyKeyPair records the EC2 key pair the instance was launched with
	KeyKeyPair = "ec2_key_pair"

	// KeyStackName identifies which stack an instance belongs to
	KeyStackName = "eggo_stack_name"

	// KeyNodeType identifies the role of the instance within the stack
	KeyNodeType = "eggo_node_type"
)

// NodeType is the role of an instance within a stack.
type NodeType string

// Node type values
const (
	NodeLauncher NodeType = "launcher"
	NodeManager  NodeType = "manager"
	NodeMaster   NodeType = "master"
	NodeWorker   NodeType = "worker"
)

// NodeTypes lists every node type in topology order.
var NodeTypes = []NodeType{NodeLauncher, NodeManager, NodeMaster, NodeWorker}

// String implements fmt.Stringer.
func (n NodeType) String() string {
	return string(n)
}

// Singleton reports whether a stack holds at most one instance of this type.
func (n NodeType) Singleton() bool {
	return n != NodeWorker
}

// ParseNodeType converts a string into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	for _, n := range NodeTypes {
		if strings.EqualFold(s, string(n)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown node type %q", s)
}

// TagBuilder provides a fluent interface for building instance tags.
type TagBuilder struct {
	tags map[string]string
}

// NewTagBuilder creates a new tag builder with the stack name pre-set.
func NewTagBuilder(stackName string) *TagBuilder {
	return &TagBuilder{
		tags: map[string]string{
			KeyStackName: stackName,
		},
	}
}

// WithOwner adds the owner tag.
func (tb *TagBuilder) WithOwner(owner string) *TagBuilder {
	tb.tags[KeyOwner] = owner
	return tb
}

// WithKeyPair adds the EC2 key pair tag.
func (tb *TagBuilder) WithKeyPair(keyPair string) *TagBuilder {
	tb.tags[KeyKeyPair] = keyPair
	return tb
}

// WithNodeType adds the node type tag.
func (tb *TagBuilder) WithNodeType(nodeType NodeType) *TagBuilder {
	tb.tags[KeyNodeType] = string(nodeType)
	return tb
}

// Build returns a copy of the tags map.
func (tb *TagBuilder) Build() map[string]string {
	result := make(map[string]string, len(tb.tags))
	for k, v := range tb.tags {
		result[k] = v
	}
	return result
}

// Selector returns the tag filter matching instances of one node type in a stack.
func Selector(stackName string, nodeType NodeType) map[string]string {
	return map[string]string{
		KeyStackName: stackName,
		KeyNodeType:  string(nodeType),
	}
}

// StackSelector returns the tag filter matching every instance in a stack.
func StackSelector(stackName string) map[string]string {
	return map[string]string{
		KeyStackName: stackName,
	}
}
