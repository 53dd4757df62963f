// Package compute provisions the launcher: the one instance per stack that
// runs the director client and drives the cluster bootstrap.
package compute
