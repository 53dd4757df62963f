// Package tags provides the EC2 tag schema used to discover stack instances.
//
// Every instance managed by eggo carries the owner, key pair, stack name and
// node type tags. Discovery is purely tag based: there is no other record of
// which instances belong to a stack.
package tags
