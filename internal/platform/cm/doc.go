// Package cm is a client for the Cloudera Manager REST API.
//
// The manager listens on a private interface, so callers reach it through an
// SSH tunnel and point the client at the tunnel's local port. Mutating calls
// return a *Command handle; Wait blocks until the command finishes and turns
// an unsuccessful result into a *CommandError.
package cm
