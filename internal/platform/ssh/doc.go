// Package ssh is the SSH transport for eggo.
//
// [Client] dials stack hosts with key authentication, retrying while an
// instance is still booting. [Executor] implements remote.Executor on top of
// it: commands over exec sessions, uploads over SFTP, and interactive login
// shells with a PTY. [Forwarder] opens local port forwards through a bastion
// host so the cluster-manager API and web UIs, which listen only on private
// interfaces, are reachable from the operator's machine.
//
// Host key verification is disabled: stack instances are ephemeral and their
// host keys are never known in advance.
package ssh
