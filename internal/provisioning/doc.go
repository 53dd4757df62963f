// Package provisioning provides shared types, interfaces, and orchestration for
// stack workflows.
//
// # Subpackages
//
//   - infrastructure/ — CloudFormation network stack
//   - compute/ — launcher instance and director client
//   - cluster/ — director bootstrap of the manager, master and workers
//   - configure/ — post-bootstrap cluster configuration and package installs
//   - destroy/ — cluster, launcher and stack teardown
//
// # Core Types
//
// Context carries configuration, state, the cloud client, the remote executor,
// the tunnel opener and the observer. Phase defines a workflow step with
// Name() and Provision() methods. State accumulates results from each phase
// (caller identity, stack outputs, launcher).
package provisioning
