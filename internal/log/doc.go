// Package log configures the process-wide zerolog logger used by the CLI and
// the provisioning observers.
package log
