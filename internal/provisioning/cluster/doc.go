// Package cluster runs the director bootstrap on the launcher, which creates
// the manager, master and worker instances and installs the cluster manager.
package cluster
